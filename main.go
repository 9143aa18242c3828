package main

import (
	"log"
	"os"
	"strings"

	"haru/config"
	"haru/controllers"
	"haru/db"
	"haru/router"
	"haru/tools"
	"haru/workflow"

	"github.com/gin-gonic/gin"
)

// =====================
// ENV esperadas
// =====================
//
// Server
// - CONFIG_PATH         (ex: config/config.json)
// - AUTOMIGRATE         (1 para criar/atualizar tabelas no boot)
//
// Kakao (login social)
// - KAKAO_CLIENT_ID
// - KAKAO_REDIRECT_URI
//
// Gemini (geração de diário)
// - GEMINI_API_KEY
// - GEMINI_MODEL        (ex: gemini-1.5-flash)
//
// Clova (análise de sentimento)
// - CLOVA_API_KEY_ID
// - CLOVA_API_KEY
//
// Os mesmos valores podem vir do arquivo de configuração; o ambiente é
// fallback (ver config.Get).
// =====================

func main() {
	cfgPath := getenv("CONFIG_PATH", "config/config.json")
	cfg := config.Get(cfgPath)

	db.SetConfigurations(cfg)
	database, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	// clientes construídos uma vez e injetados; nada de estado global de API key
	deps := controllers.Deps{
		Workflow: workflow.New(
			tools.NewGeminiClient(cfg.Gemini.ApiKey, cfg.Gemini.Model),
			tools.NewClovaClient(cfg.Clova.ApiKeyID, cfg.Clova.ApiKey),
		),
		Kakao: tools.NewKakaoClient(cfg.Kakao.ClientID, cfg.Kakao.RedirectURI),
	}

	r := gin.New()
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r, deps)

	log.Printf("Haru listening on :%s", cfg.ApiPort)
	log.Fatal(r.Run(":" + cfg.ApiPort))
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
