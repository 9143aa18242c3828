package models

import "time"

// SentimentAnalysis guarda o veredito de sentimento de exatamente um diário.
// O unique_index em diary_id sustenta o invariante de 1 registro por diário:
// reclassificar um diário atualiza o registro existente (upsert), nunca
// duplica.
type SentimentAnalysis struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	DiaryID   int64      `gorm:"column:diary_id;not null;unique_index" json:"diary_id"`
	Sentiment string     `gorm:"not null" json:"sentiment"`
	Score     float64    `gorm:"not null;default:0" json:"score"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
