// Pacote participacao implementa o ledger de comparecimento por mesa, o registro de votos e os turnos de mesário.
package participacao

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// Ledger é a única porta de escrita do total de votantes de cada mesa.
type Ledger struct {
	participacoes domain.ParticipacaoRepository
	eleitorados   domain.EleitoradoRepository
	clock         domain.Clock
}

func NewLedger(participacoes domain.ParticipacaoRepository, eleitorados domain.EleitoradoRepository, clock domain.Clock) *Ledger {
	return &Ledger{
		participacoes: participacoes,
		eleitorados:   eleitorados,
		clock:         clock,
	}
}

// GarantirParticipacao devolve a participação existente ou cria uma zerada e aberta.
func (l *Ledger) GarantirParticipacao(ctx context.Context, mesa domain.Mesa) (domain.Participacao, error) {
	mesa = mesa.Normalizada()
	if !mesa.Valida() {
		return domain.Participacao{}, domain.ErrMesaInvalida
	}
	if _, err := l.eleitores(ctx, mesa); err != nil {
		return domain.Participacao{}, err
	}

	return l.participacoes.Garantir(ctx, domain.Participacao{
		Escola:       mesa.Escola,
		Numero:       mesa.Numero,
		AtualizadoEm: l.clock.Agora(),
	})
}

func (l *Ledger) AplicarIncremento(ctx context.Context, mesa domain.Mesa, delta int64) (domain.Resultado, error) {
	return l.aplicar(ctx, mesa, delta, nil)
}

// aplicar soma delta e, com registro != nil, grava a auditoria na mesma transação do incremento.
func (l *Ledger) aplicar(ctx context.Context, mesa domain.Mesa, delta int64, registro *domain.RegistroVoto) (domain.Resultado, error) {
	if err := domain.ValidarDelta(delta); err != nil {
		return domain.Resultado{}, err
	}
	mesa = mesa.Normalizada()
	if !mesa.Valida() {
		return domain.Resultado{}, domain.ErrMesaInvalida
	}

	eleitores, err := l.eleitores(ctx, mesa)
	if err != nil {
		return domain.Resultado{}, err
	}

	p, err := l.participacoes.Incrementar(ctx, mesa, delta, l.clock.Agora(), registro)
	if err != nil {
		return domain.Resultado{}, err
	}

	return domain.NovoResultado(p, eleitores), nil
}

// Encerrar é terminal e idempotente.
func (l *Ledger) Encerrar(ctx context.Context, mesa domain.Mesa) error {
	mesa = mesa.Normalizada()
	if !mesa.Valida() {
		return domain.ErrMesaInvalida
	}
	return l.participacoes.Encerrar(ctx, mesa, l.clock.Agora())
}

func (l *Ledger) Snapshot(ctx context.Context, mesa domain.Mesa) (domain.Participacao, error) {
	mesa = mesa.Normalizada()
	if !mesa.Valida() {
		return domain.Participacao{}, domain.ErrMesaInvalida
	}
	return l.participacoes.Obter(ctx, mesa)
}

// Parcial combina o snapshot com o eleitorado para as telas de consulta.
func (l *Ledger) Parcial(ctx context.Context, mesa domain.Mesa) (domain.Resultado, error) {
	mesa = mesa.Normalizada()
	p, err := l.Snapshot(ctx, mesa)
	if err != nil {
		return domain.Resultado{}, err
	}

	eleitores, err := l.eleitores(ctx, mesa)
	if err != nil {
		return domain.Resultado{}, err
	}

	return domain.NovoResultado(p, eleitores), nil
}

func (l *Ledger) eleitores(ctx context.Context, mesa domain.Mesa) (int64, error) {
	e, err := l.eleitorados.Obter(ctx, mesa)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", domain.ErrEleitoradoNaoEncontrado, mesa)
		}
		return 0, err
	}
	return e.Eleitores, nil
}
