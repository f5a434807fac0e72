package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Database struct {
	DSN string `env:"DATABASE_DSN" envDefault:"markethub.db"`
}

type Auth struct {
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ResetPepper string        `env:"RESET_TOKEN_PEPPER" envDefault:"dev-pepper"`
	ResetTTL    time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
}

// OAuthProvider is one external login provider. The same struct is parsed
// twice with different prefixes for Google and GitHub.
type OAuthProvider struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

func (p OAuthProvider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type Uploads struct {
	Dir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxSize int64  `env:"UPLOAD_MAX_SIZE" envDefault:"5242880"`
}

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Server   Server
	Database Database
	Auth     Auth
	Google   OAuthProvider `envPrefix:"GOOGLE_OAUTH_"`
	GitHub   OAuthProvider `envPrefix:"GITHUB_OAUTH_"`
	Uploads  Uploads
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects development defaults in production.
func (c Config) validate() error {
	if !c.Production() {
		return nil
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-secret" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.ResetPepper == "dev-pepper" {
		return errors.New("RESET_TOKEN_PEPPER must be set in production")
	}
	return nil
}
