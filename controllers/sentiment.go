package controllers

import (
	"net/http"

	dbpkg "haru/db"
	"haru/models"

	"github.com/gin-gonic/gin"
)

type ClassifyDiaryRequest struct {
	DiaryID int64 `json:"diary_id" form:"diary_id"`
}

// ClassifyDiary roda a análise de sentimento sob demanda para um diário do
// usuário. O veredito é upsert por diário: reclassificar substitui o
// registro existente em vez de duplicar.
func ClassifyDiary(c *gin.Context) {
	var req ClassifyDiaryRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DiaryID <= 0 {
		RespondError(c, "diary_id é obrigatório", http.StatusBadRequest)
		return
	}

	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	db := dbpkg.DBInstance(c)
	deps := DepsInstance(c)
	if db == nil || deps.Workflow == nil {
		RespondError(c, "workflow não configurado no contexto", http.StatusInternalServerError)
		return
	}

	analysis, emoji, err := deps.Workflow.Classify(c.Request.Context(), db, user, req.DiaryID)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "sentiment analysis completed",
		"analysis":  analysis,
		"sentiment": analysis.Sentiment,
		"emoji":     emoji,
	})
}

// GetSentiments lista os vereditos dos diários do usuário.
func GetSentiments(c *gin.Context) {
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

	var analyses []models.SentimentAnalysis
	err := db.
		Select("sentiment_analyses.*").
		Joins("JOIN diaries ON diaries.id = sentiment_analyses.diary_id").
		Where("diaries.user_id = ?", user.ID).
		Find(&analyses).Error
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, analyses)
}
