// Pacote antifraude limita a cadência de submissões por sessão de mesário (Redis ou noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

var ErrRateLimitExceeded = errors.New("limite de submissoes atingido")

// RedisRateLimiter conta submissões por sessão e mesa em janelas fixas.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Validar(ctx context.Context, sessao domain.Sessao) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	key := r.buildKey(sessao)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("antifraude: falha ao incrementar chave: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("antifraude: falha ao definir expiracao: %w", err)
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(sessao domain.Sessao) string {
	base := fmt.Sprintf("%s|%s|%s", sessao.ID, sessao.Mesa.Escola, sessao.Mesa.Numero)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var (
	_ domain.Antifraude = (*RedisRateLimiter)(nil)
	_ domain.Antifraude = Noop{}
)
