package controllers

import (
	"net/http"

	dbpkg "haru/db"
	"haru/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateChatSessionRequest struct {
	ConversationData string `json:"conversation_data" form:"conversation_data"`
}

// CreateChatSession grava a transcrição bruta de uma conversa com o
// assistente. A geração de diário recebe o payload direto do front; esta
// tabela existe para histórico/auditoria.
func CreateChatSession(c *gin.Context) {
	var req CreateChatSessionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ConversationData == "" {
		RespondError(c, "conversation_data é obrigatório", http.StatusBadRequest)
		return
	}

	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	session := models.ChatSession{
		UserID:           user.ID,
		SessionID:        uuid.NewString(),
		ConversationData: req.ConversationData,
	}
	if err := db.Create(&session).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func GetChatSessions(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var sessions []models.ChatSession
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&sessions).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, sessions)
}
