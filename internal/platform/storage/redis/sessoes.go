// Pacote redis guarda sessões de turno, a fila de eventos e o painel por escola.
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

// SessaoRegistry mapeia a sessão do mesário para a mesa do turno; o TTL encerra o turno sozinho.
type SessaoRegistry struct {
	client *redis.Client
	prefix string
	clock  domain.Clock
}

func NewSessaoRegistry(client *redis.Client, prefix string, clock domain.Clock) *SessaoRegistry {
	if prefix == "" {
		prefix = "sessao"
	}
	return &SessaoRegistry{
		client: client,
		prefix: prefix,
		clock:  clock,
	}
}

func (s *SessaoRegistry) Abrir(ctx context.Context, sessao domain.Sessao) error {
	ttl := sessao.ExpiraEm.Sub(s.clock.Agora())
	if ttl <= 0 {
		return fmt.Errorf("%w: expiracao no passado", domain.ErrSessaoInvalida)
	}

	payload, err := json.Marshal(sessao)
	if err != nil {
		return fmt.Errorf("redis sessoes: falha serializando sessao: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessao.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis sessoes: falha ao abrir %s: %w", sessao.ID, err)
	}
	return nil
}

func (s *SessaoRegistry) Buscar(ctx context.Context, id domain.SessaoID) (domain.Sessao, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Sessao{}, domain.ErrNotFound
		}
		return domain.Sessao{}, fmt.Errorf("redis sessoes: falha ao buscar %s: %w", id, err)
	}

	var sessao domain.Sessao
	if err := json.Unmarshal(raw, &sessao); err != nil {
		return domain.Sessao{}, fmt.Errorf("redis sessoes: payload invalido para %s: %w", id, err)
	}
	return sessao, nil
}

func (s *SessaoRegistry) Encerrar(ctx context.Context, id domain.SessaoID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis sessoes: falha ao encerrar %s: %w", id, err)
	}
	return nil
}

func (s *SessaoRegistry) key(id domain.SessaoID) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// TTLRestante existe para diagnóstico e testes.
func (s *SessaoRegistry) TTLRestante(ctx context.Context, id domain.SessaoID) (time.Duration, error) {
	return s.client.TTL(ctx, s.key(id)).Result()
}

var _ domain.SessaoRegistry = (*SessaoRegistry)(nil)
