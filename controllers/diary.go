package controllers

import (
	"encoding/json"
	"net/http"

	dbpkg "haru/db"
	"haru/workflow"

	"github.com/gin-gonic/gin"
)

type CreateDiaryRequest struct {
	Conversation json.RawMessage `json:"conversation"`
}

type SaveDiaryRequest struct {
	DiaryID int64  `json:"diary_id"`
	Title   string `json:"title"`
	Content string `json:"diaryContent"`
}

type UpdateDiaryRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// CreateDiary encerra uma conversa: o transcript vira uma entrada de diário
// via modelo generativo e a entrada é classificada. Se a classificação
// falhar depois do diário já gravado, respondemos sucesso parcial com o
// campo sentiment_error preenchido.
func CreateDiary(c *gin.Context) {
	var req CreateDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Conversation) == 0 || string(req.Conversation) == "null" {
		RespondError(c, "conversation data is required", http.StatusBadRequest)
		return
	}

	var conversation any
	if err := json.Unmarshal(req.Conversation, &conversation); err != nil {
		RespondError(c, "conversation data is invalid json", http.StatusBadRequest)
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

	result, err := deps.Workflow.CreateFromConversation(c.Request.Context(), db, user, conversation)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, diaryResultPayload("Chat ended and diary created", result))
}

// SaveDiary aplica título/conteúdo editados num diário do próprio usuário e
// reclassifica o conteúdo final. Mesma regra de sucesso parcial do create.
func SaveDiary(c *gin.Context) {
	var req SaveDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	result, err := deps.Workflow.Save(c.Request.Context(), db, user, req.DiaryID, req.Title, req.Content)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	RespondSuccess(c, diaryResultPayload("Diary saved successfully", result))
}

// UpdateDiary é a variante REST do save: id no path, campos no body.
func UpdateDiary(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdateDiaryRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	user, logged := GetUserLogged(c)
	if !logged {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	db := dbpkg.DBInstance(c)
	deps := DepsInstance(c)
	if db == nil || deps.Workflow == nil {
		RespondError(c, "workflow não configurado no contexto", http.StatusInternalServerError)
		return
	}

	result, err := deps.Workflow.Save(c.Request.Context(), db, user, id, req.Title, req.Content)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	RespondSuccess(c, diaryResultPayload("Diary updated", result))
}

// GetDiaries lista os diários do usuário anotados com o emoji derivado do
// sentimento armazenado (neutral quando ainda não há análise).
func GetDiaries(c *gin.Context) {
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

	summaries, err := deps.Workflow.List(db, user)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	RespondSuccess(c, gin.H{
		"code":    200,
		"diaries": summaries,
	})
}

func GetDiaryByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	user, logged := GetUserLogged(c)
	if !logged {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	db := dbpkg.DBInstance(c)
	deps := DepsInstance(c)
	if db == nil || deps.Workflow == nil {
		RespondError(c, "workflow não configurado no contexto", http.StatusInternalServerError)
		return
	}

	diary, err := deps.Workflow.FindOwned(db, user, id)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}

	RespondSuccess(c, diary)
}

// diaryResultPayload monta a resposta combinada diário + sentimento,
// marcando explicitamente quando a análise falhou após o diário já gravado.
func diaryResultPayload(message string, result workflow.Result) gin.H {
	payload := gin.H{
		"code":         200,
		"message":      message,
		"diaryId":      result.Diary.ID,
		"diaryTitle":   result.Diary.Title,
		"diaryContent": result.Diary.Content,
		"emoji":        result.Emoji,
	}

	if result.Sentiment != nil {
		payload["sentiment_analysis"] = gin.H{
			"sentiment": result.Sentiment.Sentiment,
			"score":     result.Sentiment.Score,
			"emoji":     result.Emoji,
		}
	}
	if result.SentimentErr != nil {
		payload["sentiment_error"] = "sentiment analysis failed: " + result.SentimentErr.Error()
	}
	return payload
}
