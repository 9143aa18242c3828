package models

import "time"

// Diary representa uma entrada de diário gerada a partir de uma conversa
// (ou editada manualmente pelo dono). O dono é definido na criação e nunca
// muda; CreatedAt é imutável e UpdatedAt é renovado a cada save.
type Diary struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Title     string     `gorm:"not null" json:"title" form:"title"`
	Content   string     `gorm:"type:text" json:"content" form:"content"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
