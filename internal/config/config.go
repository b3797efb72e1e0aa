package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Email    EmailConfig
	OAuth    OAuthConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Addr           string
	LogLevel       string
	CORSOrigins    []string
	RequestTimeout string
}

type AuthConfig struct {
	JWTSecret   string
	SessionTTL  string
	RememberTTL string
}

type EmailConfig struct {
	APIKey      string
	FromEmail   string
	AppName     string
	FrontendURL string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:           getenv("HTTP_ADDR", ":3000"),
			LogLevel:       getenv("LOG_LEVEL", "info"),
			CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:4200")),
			RequestTimeout: getenv("REQUEST_TIMEOUT", "10s"),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			SessionTTL:  getenv("JWT_SESSION_TTL", "168h"),
			RememberTTL: getenv("JWT_REMEMBER_TTL", "720h"),
		},
		Email: EmailConfig{
			APIKey:      os.Getenv("RESEND_API_KEY"),
			FromEmail:   getenv("EMAIL_FROM", "onboarding@resend.dev"),
			AppName:     getenv("APP_NAME", "FTechnology"),
			FrontendURL: getenv("FRONTEND_URL", "http://localhost:4200"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
