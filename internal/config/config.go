package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Database. DBDriver "sqlite" keeps everything in SQLitePath for local runs.
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"strive_blog.db"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"strive_blog"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Post store backend: "sql" keeps posts in the main database,
	// "mongo" stores each post as a single document.
	PostStore     string `env:"POST_STORE" envDefault:"sql"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"strive_blog"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	BackendURL         string `env:"BACKEND_URL" envDefault:"http://localhost:3000"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// Admin
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminToken  string   `env:"ADMIN_TOKEN"`

	// Rate limits per IP and minute; 0 disables the limiter.
	RateLimit     int `env:"RATE_LIMIT" envDefault:"60"`
	AuthRateLimit int `env:"AUTH_RATE_LIMIT" envDefault:"10"`

	// Uploads
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`

	// Logging
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogRetention time.Duration `env:"LOG_RETENTION" envDefault:"720h"`

	// Server
	Port        string `env:"PORT" envDefault:"3000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	SentryDSN   string `env:"SENTRY_DSN"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first missing setting the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.PostStore {
	case "sql":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when POST_STORE=mongo")
		}
	default:
		return fmt.Errorf("unknown POST_STORE %q", c.PostStore)
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// GoogleCallbackURL is the redirect target registered with Google.
func (c *Config) GoogleCallbackURL() string {
	return c.BackendURL + "/api/auth/google/callback"
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
