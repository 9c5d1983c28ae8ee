package config

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed prompt.md
var defaultSystemPrompt string

type Config struct {
	Port           string
	GeminiAPIKey   string
	GeminiModel    string
	BackendBaseURL string
	DBPath         string
	PromptFile     string
	AllowedOrigins []string
}

func GetConfig() Config {
	return Config{
		Port:           getEnv("PORT", "9090"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		BackendBaseURL: getEnv("BACKEND_API_URL", "http://localhost:8000/api/v1"),
		DBPath:         getEnv("DB_PATH", "./data/badger"),
		PromptFile:     getEnv("PROMPT_FILE", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

// SystemPrompt returns the assistant's system prompt: the file named by
// PROMPT_FILE when readable, otherwise the embedded default.
func (c Config) SystemPrompt() string {
	if c.PromptFile != "" {
		if data, err := os.ReadFile(c.PromptFile); err == nil && len(data) > 0 {
			return string(data)
		}
	}
	return defaultSystemPrompt
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
