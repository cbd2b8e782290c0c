package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// Fila usa uma lista Redis para entregar eventos de participação ao worker do painel.
type Fila struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{
		client:  client,
		key:     key,
		timeout: 5 * time.Second,
	}
}

func (f *Fila) PublicarEvento(ctx context.Context, evento domain.EventoParticipacao) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: falha serializando evento: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: falha ao enfileirar evento %s: %w", evento.Tipo, err)
	}
	return nil
}

func (f *Fila) ConsumirEventos(ctx context.Context, handler func(context.Context, domain.EventoParticipacao) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// BRPOP com timeout curto devolve o controle para checar o contexto.
		res, err := f.client.BRPop(ctx, f.timeout, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("redis fila: falha ao consumir evento: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var evento domain.EventoParticipacao
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			return fmt.Errorf("redis fila: payload invalido: %w", err)
		}

		if err := handler(ctx, evento); err != nil {
			return err
		}
	}
}

// Pendentes informa quantos eventos aguardam consumo.
func (f *Fila) Pendentes(ctx context.Context) (int64, error) {
	return f.client.LLen(ctx, f.key).Result()
}

var _ domain.Fila = (*Fila)(nil)
