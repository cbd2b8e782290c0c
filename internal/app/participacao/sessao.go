package participacao

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// validarSessao confirma que a sessão segue viva no registry e vinculada à mesma mesa.
func validarSessao(ctx context.Context, sessoes domain.SessaoRegistry, clock domain.Clock, sessao *domain.Sessao) error {
	if sessao == nil || sessao.ID == "" {
		return domain.ErrSessaoInvalida
	}
	if sessao.ExpiradaEm(clock.Agora()) {
		return fmt.Errorf("%w: expirada", domain.ErrSessaoInvalida)
	}
	if sessoes == nil {
		return nil
	}

	registrada, err := sessoes.Buscar(ctx, sessao.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: encerrada", domain.ErrSessaoInvalida)
		}
		return err
	}
	if registrada.Mesa != sessao.Mesa {
		return fmt.Errorf("%w: mesa divergente", domain.ErrSessaoInvalida)
	}
	return nil
}
