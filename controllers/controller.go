package controllers

import (
	"errors"
	"net/http"

	"haru/tools"
	"haru/workflow"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// RespondWorkflowError traduz a taxonomia de erros do workflow e dos
// providers para status HTTP. Falha de provider externo vira 502.
func RespondWorkflowError(c *gin.Context, err error) {
	var parseErr *tools.DiaryParseError
	var clovaErr *tools.ClovaError

	switch {
	case errors.Is(err, workflow.ErrNotFound):
		RespondError(c, "diary not found", http.StatusNotFound)
	case errors.Is(err, workflow.ErrAuthRequired):
		RespondError(c, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, workflow.ErrValidation):
		RespondError(c, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tools.ErrEmptyGeneration):
		RespondError(c, "no candidates returned from the model", http.StatusBadGateway)
	case errors.As(err, &parseErr):
		RespondError(c, "failed to parse diary data: "+parseErr.Err.Error(), http.StatusBadGateway)
	case errors.As(err, &clovaErr):
		RespondError(c, "sentiment analysis failed", http.StatusBadGateway)
	default:
		RespondError(c, err.Error(), http.StatusInternalServerError)
	}
}
