package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultHTTPAddr   = ":8005"
	DefaultDatasetID  = "bakitacos/indonesia-e-commerce-sales-and-shipping-20232025"
	DefaultUploadDir  = "uploads"
	DefaultSessionTTL = time.Hour
)

type Config struct {
	TgToken     string
	HTTPAddr    string
	PublicURL   string
	DbDsn       string
	DatasetID   string
	BundleRoot  string
	UploadDir   string
	AliasesFile string
	LogLevel    string
	LogFormat   string
	SessionTTL  time.Duration
}

var (
	config  *Config
	loadErr error
	once    sync.Once
	envFile = ".env"
)

// GetConfig возвращает singleton экземпляр конфигурации.
// Ошибка первой загрузки возвращается при каждом вызове.
func GetConfig() (*Config, error) {
	once.Do(func() {
		config, loadErr = Load(envFile)
	})
	return config, loadErr
}

// Load читает envFile (если он есть) и затем окружение.
// Переменные окружения, заданные заранее, не перезаписываются.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := fromEnv()
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		TgToken:     os.Getenv("TG_TOKEN"),
		HTTPAddr:    getenv("HTTP_ADDR", DefaultHTTPAddr),
		PublicURL:   os.Getenv("PUBLIC_URL"),
		DbDsn:       os.Getenv("DB_DSN"),
		DatasetID:   getenv("DATASET_ID", DefaultDatasetID),
		BundleRoot:  os.Getenv("BUNDLE_ROOT"),
		UploadDir:   getenv("UPLOAD_DIR", DefaultUploadDir),
		AliasesFile: os.Getenv("COLUMN_ALIASES_FILE"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
		SessionTTL:  DefaultSessionTTL,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
