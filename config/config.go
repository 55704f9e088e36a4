// Package config reads the application's environment configuration. A .env
// file is honoured for local runs; every value has a development default so
// the server starts with no environment at all.
// File: config/config.go
package config

import (
	"os"

	"github.com/joho/godotenv"

	"athproof/logger"
)

// Config carries every tunable the application reads at startup.
type Config struct {
	Environment    string // "development" or "production"
	ListenAddr     string
	ApplicationURL string
	WebsocketURL   string

	DocstoreDBPath string
	IdentityDBPath string

	SessionSecret string
	TicketSecret  string // signs websocket ticket tokens

	S3Bucket      string // empty means local-disk uploads
	UploadDir     string
	UploadBaseURL string

	ResendAPIKey string
	MailFrom     string

	MetricsEnabled bool // CloudWatch metrics publishing

	// First-run super-admin credentials; used only when no staff account
	// exists yet.
	BootstrapEmail    string
	BootstrapPassword string
}

// Load reads .env (when present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("[Load] No .env file loaded: %v", err)
	}

	cfg := Config{
		Environment:    getenv("APP_ENV", "development"),
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		ApplicationURL: getenv("APPLICATION_URL", "http://localhost:8080"),
		WebsocketURL:   getenv("WEBSOCKET_URL", "ws://localhost:8080/live"),
		DocstoreDBPath: getenv("DOCSTORE_DB", "./data/documents.db"),
		IdentityDBPath: getenv("IDENTITY_DB", "./data/accounts.db"),
		SessionSecret:  getenv("SESSION_SECRET", "dev-session-secret"),
		TicketSecret:   getenv("TICKET_SECRET", "dev-ticket-secret"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		UploadDir:      getenv("UPLOAD_DIR", "./static/uploads"),
		UploadBaseURL:  getenv("UPLOAD_BASE_URL", "/static/uploads"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		MailFrom:       getenv("MAIL_FROM", "ATH-PROOF <no-reply@athproof.example>"),
		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "true",

		BootstrapEmail:    os.Getenv("BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("BOOTSTRAP_PASSWORD"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
