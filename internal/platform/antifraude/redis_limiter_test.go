package antifraude

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

func novaSessao(id string) domain.Sessao {
	return domain.Sessao{
		ID:        domain.SessaoID(id),
		MesarioID: "mesario-1",
		Mesa:      domain.Mesa{Escola: "escola-1", Numero: "7"},
	}
}

func TestRedisRateLimiterRespectsLimit(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRedisRateLimiter(client, 2, time.Minute, "rl")
	sessao := novaSessao("sessao-1")

	ctx := context.Background()
	if err := limiter.Validar(ctx, sessao); err != nil {
		t.Fatalf("primeira submissao deveria ser aceita, erro: %v", err)
	}
	if err := limiter.Validar(ctx, sessao); err != nil {
		t.Fatalf("segunda submissao deveria ser aceita, erro: %v", err)
	}

	if err := limiter.Validar(ctx, sessao); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("terceira submissao deveria ser bloqueada, recebeu: %v", err)
	}

	key := limiter.buildKey(sessao)
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Fatalf("esperava TTL positivo para %s, veio %v", key, ttl)
	}

	if err := limiter.Validar(ctx, novaSessao("sessao-2")); err != nil {
		t.Fatalf("outra sessao tem contador proprio, erro: %v", err)
	}
}

func TestRedisRateLimiterResetsAfterWindow(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	window := 30 * time.Second
	limiter := NewRedisRateLimiter(client, 1, window, "rl")
	sessao := novaSessao("sessao-3")

	ctx := context.Background()
	if err := limiter.Validar(ctx, sessao); err != nil {
		t.Fatalf("submissao inicial deveria ser aceita: %v", err)
	}
	if err := limiter.Validar(ctx, sessao); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("segunda submissao antes da janela deveria falhar: %v", err)
	}

	mr.FastForward(window + time.Second)

	if err := limiter.Validar(ctx, sessao); err != nil {
		t.Fatalf("apos expirar janela, submissao deveria ser aceita: %v", err)
	}
}

func TestRedisRateLimiterPermissivoQuandoDesconfigurado(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 0, 0, "")

	if err := limiter.Validar(context.Background(), novaSessao("x")); err != nil {
		t.Fatalf("limiter sem cliente deveria aceitar, erro: %v", err)
	}
	if err := NewNoop().Validar(context.Background(), novaSessao("x")); err != nil {
		t.Fatalf("noop deveria aceitar, erro: %v", err)
	}
}
