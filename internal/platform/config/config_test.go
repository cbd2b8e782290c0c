package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_QuandoSemVariaveis_DeveUsarDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_DB", "")
	t.Setenv("SESSAO_TTL_MINUTOS", "")
	t.Setenv("HTTP_ADDRESS", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 12*time.Hour, cfg.SessaoTTL)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
}

func TestLoad_DeveLerVariaveisDoAmbiente(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSAO_TTL_MINUTOS", "90")
	t.Setenv("ANTIFRAUDE_RATE_LIMIT_ENABLED", "false")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessaoTTL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Contains(t, cfg.PostgresDSN(), "@db:5432/")
}

func TestLoad_QuandoValoresInvalidos_DeveFalhar(t *testing.T) {
	tests := []struct {
		name  string
		chave string
		valor string
	}{
		{name: "redis db nao numerico", chave: "REDIS_DB", valor: "abc"},
		{name: "ttl negativo", chave: "SESSAO_TTL_MINUTOS", valor: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("REDIS_DB", "0")
			t.Setenv("SESSAO_TTL_MINUTOS", "60")
			t.Setenv(tt.chave, tt.valor)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}
