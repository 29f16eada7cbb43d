package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"slices"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host      string     `env:"HOST" envDefault:"0.0.0.0"`
	Port      int        `env:"PORT" envDefault:"8000" validate:"min=1,max=65535"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	// DevMode forces debug logging in text form.
	DevMode bool `env:"DEV_MODE"`

	StaticDir    string `env:"STATIC_DIR" envDefault:"src/static"`
	StaticPrefix string `env:"STATIC_PREFIX" envDefault:"/static" validate:"startswith=/,endsnotwith=/,nefield=APIPrefix,ne=/docs,ne=/healthz"`
	IndexFile    string `env:"INDEX_FILE" envDefault:"index.html" validate:"required,excludesall=/\\"`
	APIPrefix    string `env:"API_PREFIX" envDefault:"/api" validate:"startswith=/,endsnotwith=/,ne=/docs,ne=/healthz"`

	CORS CORS `envPrefix:"CORS_"`

	// GeminiAPIKey may be empty; only the AI client factory requires it.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

// CORS is the cross-origin policy. The defaults allow everything, including
// credentials.
type CORS struct {
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:"," validate:"min=1"`
	AllowedMethods   []string `env:"ALLOWED_METHODS" envDefault:"*" envSeparator:"," validate:"min=1"`
	AllowedHeaders   []string `env:"ALLOWED_HEADERS" envDefault:"*" envSeparator:"," validate:"min=1"`
	AllowCredentials bool     `env:"ALLOW_CREDENTIALS" envDefault:"true"`
}

// WildcardCredentials reports the any-origin plus credentials combination,
// which makes every origin a credentialed one.
func (c CORS) WildcardCredentials() bool {
	return c.AllowCredentials && slices.Contains(c.AllowedOrigins, "*")
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a .env file from the working directory when present, then the
// process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return Parse(env.Options{})
}

// Parse builds a Config from opts (opts.Environment replaces the process
// environment when set) and validates it.
func Parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if cfg.DevMode {
		cfg.LogLevel = slog.LevelDebug
		cfg.LogFormat = "text"
	}
	return &cfg, nil
}
