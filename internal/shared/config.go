package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	AppEnv          string `validate:"required"`
	LogLevel        string `validate:"required"`
	HTTPAddr        string `validate:"required"`
	MetricsAddr     string
	AppStoreAPIBase string `validate:"required,url"`
	AppStoreWebBase string `validate:"required,url"`
	PlayStoreBase   string `validate:"required,url"`
	Country         string `validate:"required,len=2"`
	Lang            string `validate:"required"`
	AppStoreLimit   int    `validate:"min=0"` // 0: unbounded
	PlayStoreLimit  int    `validate:"min=0"` // 0: library default
	ClientRPS       int    `validate:"min=1"`
	HTTPTimeout     time.Duration
	ExportWorkers   int    `validate:"min=1"`
	ExportDir       string `validate:"required"`
}

func Load() (Config, error) {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""), // empty: metrics listener disabled
		AppStoreAPIBase: env("APPSTORE_API_BASE", "https://amp-api.apps.apple.com"),
		AppStoreWebBase: env("APPSTORE_WEB_BASE", "https://apps.apple.com"),
		PlayStoreBase:   env("PLAYSTORE_BASE", "https://play.google.com"),
		Country:         env("REVIEW_COUNTRY", "it"),
		Lang:            env("REVIEW_LANG", "it"),
		AppStoreLimit:   atoi("APPSTORE_REVIEW_LIMIT", 0),
		PlayStoreLimit:  atoi("PLAYSTORE_REVIEW_LIMIT", 100000),
		ClientRPS:       atoi("CLIENT_RPS", 5),
		HTTPTimeout:     time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 300)) * time.Second,
		ExportWorkers:   atoi("EXPORT_WORKERS", 4),
		ExportDir:       env("EXPORT_DIR", "exports"),
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
