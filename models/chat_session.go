package models

import "time"

// ChatSession registra a transcrição bruta de uma conversa com o assistente.
// ConversationData guarda o payload em JSON exatamente como veio do front;
// a geração de diário recebe esse payload, não esta tabela.
type ChatSession struct {
	ID               int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID           int64      `gorm:"not null;index" json:"user_id"`
	SessionID        string     `gorm:"not null;unique_index" json:"session_id"`
	ConversationData string     `gorm:"type:text" json:"conversation_data" form:"conversation_data"`
	CreatedAt        *time.Time `json:"created_at"`
}
