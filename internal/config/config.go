package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Postgres PostgresConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AuthConfig holds raw values; NewAuthService parses and validates them.
type AuthConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTTL       string
	RefreshTTL      string
	BcryptCost      string
	ResetUILink     string
	CookieSecure    string
	CookieSameSite  string
	CookieDomain    string
	CookiePath      string
	AdminEmail      string
	AdminPassword   string
	ResetEmailBody  string
	ResetEmailTitle string
}

type StoreConfig struct {
	Driver string
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

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type StorageConfig struct {
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	FilesDir       string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() Config {
	env := getenv("APP_ENV", "production")
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			Env:            env,
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			AccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:       getenv("JWT_ACCESS_TTL", "15m"),
			RefreshTTL:      getenv("JWT_REFRESH_TTL", "720h"),
			BcryptCost:      os.Getenv("BCRYPT_COST"),
			ResetUILink:     getenv("RESET_PASSWORD_UI_LINK", "http://localhost:3000/reset-password"),
			CookieSecure:    getenv("AUTH_COOKIE_SECURE", defaultCookieSecure(env)),
			CookieSameSite:  os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookieDomain:    os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:      os.Getenv("AUTH_COOKIE_PATH"),
			AdminEmail:      os.Getenv("ADMIN_EMAIL"),
			AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
			ResetEmailBody:  os.Getenv("RESET_EMAIL_TEMPLATE"),
			ResetEmailTitle: getenv("RESET_EMAIL_SUBJECT", "Reset your password"),
		},
		Store: StoreConfig{
			Driver: getenv("STORE_DRIVER", "postgres"),
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
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getenv("SMTP_FROM", "noreply@pdfdesk.local"),
		},
		Storage: StorageConfig{
			S3Bucket:       os.Getenv("S3_BUCKET"),
			S3Region:       getenv("S3_REGION", "us-east-1"),
			S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
			S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
			FilesDir:       getenv("FILES_DIR", "./files"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}
}

// IsLocal reports whether the process runs in a development environment.
func (c ServerConfig) IsLocal() bool {
	return isLocalEnv(c.Env)
}

func isLocalEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local":
		return true
	}
	return false
}

func defaultCookieSecure(env string) string {
	if isLocalEnv(env) {
		return "false"
	}
	return "true"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
