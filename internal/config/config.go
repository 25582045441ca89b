package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL"`

	BaseURL          string   `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	MediaRoot string `env:"MEDIA_ROOT" envDefault:"media"`
	MediaURL  string `env:"MEDIA_URL" envDefault:"/media/"`

	ContactNotifyTo string `env:"CONTACT_NOTIFY_TO"`

	Social SocialConfig `envPrefix:"SOCIAL_"`
	SMTP   SMTPConfig   `envPrefix:"SMTP_"`
}

// SocialConfig controls how third-party assertions are verified.
type SocialConfig struct {
	// TrustedClaims accepts client-supplied user_data without contacting the
	// provider. Only for test harnesses; Validate rejects it in production.
	TrustedClaims   bool          `env:"TRUSTED_CLAIMS" envDefault:"false"`
	VerifyTimeout   time.Duration `env:"VERIFY_TIMEOUT" envDefault:"10s"`
	PictureTimeout  time.Duration `env:"PICTURE_TIMEOUT" envDefault:"10s"`
	PictureMaxBytes int64         `env:"PICTURE_MAX_BYTES" envDefault:"5242880"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("required environment variable not set: DATABASE_URL")
	}
	if c.Social.TrustedClaims && c.IsProduction() {
		return errors.New("SOCIAL_TRUSTED_CLAIMS must not be enabled in production")
	}
	if c.Social.VerifyTimeout <= 0 {
		return errors.New("SOCIAL_VERIFY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
