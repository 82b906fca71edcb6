package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config - конфигурация сервера из переменных окружения.
type Config struct {
	// HTTP-сервер
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// PostgreSQL
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"textgame_db"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Провайдер языковой модели
	AIProvider string        `envconfig:"AI_PROVIDER" default:"openai"`
	AIAPIKey   string        `envconfig:"AI_API_KEY"`
	AIBaseURL  string        `envconfig:"AI_BASE_URL"`
	AIModel    string        `envconfig:"AI_MODEL"`
	AIProxy    string        `envconfig:"AI_PROXY"`
	AITimeout  time.Duration `envconfig:"AI_TIMEOUT" default:"180s"`

	// Параметры генерации
	GenOptionsCount    int    `envconfig:"GEN_OPTIONS_COUNT" default:"4"`
	GenChapterLength   int    `envconfig:"GEN_CHAPTER_LENGTH" default:"400"`
	GenSummaryLength   int    `envconfig:"GEN_SUMMARY_LENGTH" default:"200"`
	GenLanguage        string `envconfig:"GEN_LANGUAGE" default:"ru"`
	GenMaxRetries      int    `envconfig:"GEN_MAX_RETRIES" default:"5"`
	GenMaxSourceTokens int    `envconfig:"GEN_MAX_SOURCE_TOKENS" default:"12000"`

	// Автописьмо
	AutoWriteMaxChapters int `envconfig:"AUTOWRITE_MAX_CHAPTERS" default:"10"`
}

// Load читает конфигурацию из окружения.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	return &cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaskedDSN возвращает DSN с замаскированным паролем для логирования.
func (c *Config) MaskedDSN() string {
	dsn := c.DSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}
