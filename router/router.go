package router

import (
	"log"

	"haru/controllers"
	"haru/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares: public login + health,
// then everything else behind the Kakao token middleware.
func Initialize(r *gin.Engine, deps controllers.Deps) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(controllers.SetDeps(deps))

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/login/kakao", Logger(), controllers.KakaoLogin)

	// Authenticated routes (Kakao access token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())

	auth.GET("/me", Logger(), controllers.Me)

	// Diaries
	auth.POST("/diaries", Logger(), controllers.CreateDiary)
	auth.POST("/diaries/save", Logger(), controllers.SaveDiary)
	auth.GET("/diaries", Logger(), controllers.GetDiaries)
	auth.GET("/diaries/:id", Logger(), controllers.GetDiaryByID)
	auth.PUT("/diaries/:id", Logger(), controllers.UpdateDiary)

	// Sentiment analyses
	auth.POST("/sentiments", Logger(), controllers.ClassifyDiary)
	auth.GET("/sentiments", Logger(), controllers.GetSentiments)

	// Chat sessions (raw transcripts)
	auth.POST("/chat-sessions", Logger(), controllers.CreateChatSession)
	auth.GET("/chat-sessions", Logger(), controllers.GetChatSessions)

	log.Printf("Routes initialized")
}
