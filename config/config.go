package config

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	Kakao struct {
		ClientID    string `json:"client_id"`
		RedirectURI string `json:"redirect_uri"`
	} `json:"kakao"`

	Gemini struct {
		ApiKey string `json:"api_key"`
		Model  string `json:"model"`
	} `json:"gemini"`

	Clova struct {
		ApiKeyID string `json:"api_key_id"`
		ApiKey   string `json:"api_key"`
	} `json:"clova"`
}

func Get(path string) Configuration {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var c Configuration
	if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}

	// segredos podem vir do ambiente em vez do arquivo
	if c.Kakao.ClientID == "" {
		c.Kakao.ClientID = getenv("KAKAO_CLIENT_ID", "")
	}
	if c.Kakao.RedirectURI == "" {
		c.Kakao.RedirectURI = getenv("KAKAO_REDIRECT_URI", "")
	}
	if c.Gemini.ApiKey == "" {
		c.Gemini.ApiKey = getenv("GEMINI_API_KEY", "")
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = getenv("GEMINI_MODEL", "gemini-1.5-flash")
	}
	if c.Clova.ApiKeyID == "" {
		c.Clova.ApiKeyID = getenv("CLOVA_API_KEY_ID", "")
	}
	if c.Clova.ApiKey == "" {
		c.Clova.ApiKey = getenv("CLOVA_API_KEY", "")
	}

	return c
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
