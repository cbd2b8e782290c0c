// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config agrega todos os parâmetros necessários para API, worker e importador.
type Config struct {
	HTTPAddress string
	LogLevel    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FilaKey      string
	PainelPrefix string
	SessaoPrefix string
	SessaoTTL    time.Duration

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	AutoMigrate bool

	WorkerMetricsAddress string
}

// Load lê um .env opcional do diretório corrente e depois o ambiente do processo.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: falha lendo .env: %w", err)
	}

	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "mesas"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "mesas"),
		PostgresDB:             getEnv("POSTGRES_DB", "participacao"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		FilaKey:                getEnv("REDIS_QUEUE_KEY", "fila:participacao"),
		PainelPrefix:           getEnv("REDIS_PAINEL_PREFIX", "painel"),
		SessaoPrefix:           getEnv("REDIS_SESSAO_PREFIX", "sessao"),
		RateLimitEnabled:       getEnvAsBool("ANTIFRAUDE_RATE_LIMIT_ENABLED", true),
		RateLimitMaxActions:    getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_MAX", 30),
		RateLimitWindowSeconds: getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("ANTIFRAUDE_RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		WorkerMetricsAddress:   getEnv("WORKER_METRICS_ADDRESS", ":9090"),
	}

	dbInt, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	minutos := getEnvAsInt("SESSAO_TTL_MINUTOS", 720)
	if minutos <= 0 {
		return Config{}, fmt.Errorf("config: SESSAO_TTL_MINUTOS deve ser positivo, veio %d", minutos)
	}
	cfg.SessaoTTL = time.Duration(minutos) * time.Minute

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
