// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string

	// Posts cache refresh
	RefreshInterval time.Duration

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() *Config {
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	refreshMinutes, _ := strconv.Atoi(getEnv("CACHE_REFRESH_MINUTES", "5"))

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/inkwell?charset=utf8mb4&parseTime=True&loc=Local"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "inkwell"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),

		RefreshInterval: time.Duration(refreshMinutes) * time.Minute,

		// Email settings
		SMTPHost:     getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@inkwell.app"),
		FromName:     getEnv("FROM_NAME", "Inkwell"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
