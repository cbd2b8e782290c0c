package participacao

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	"github.com/marcelojr/participacao-mesas/internal/platform/metrics"
)

const SessaoTTLPadrao = 12 * time.Hour

// Turnos abre e encerra sessões de mesário e fecha a mesa ao fim da apuração.
type Turnos struct {
	ledger  *Ledger
	sessoes domain.SessaoRegistry
	fila    domain.Fila
	clock   domain.Clock
	ids     *ids.Generator
	ttl     time.Duration
	logger  *slog.Logger
}

func NewTurnos(
	ledger *Ledger,
	sessoes domain.SessaoRegistry,
	fila domain.Fila,
	clock domain.Clock,
	idsGen *ids.Generator,
	ttl time.Duration,
	log *slog.Logger,
) *Turnos {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if ttl <= 0 {
		ttl = SessaoTTLPadrao
	}
	return &Turnos{
		ledger:  ledger,
		sessoes: sessoes,
		fila:    fila,
		clock:   clock,
		ids:     idsGen,
		ttl:     ttl,
		logger:  logger.Ou(log),
	}
}

// IniciarTurno garante a participação da mesa antes de abrir a sessão.
func (t *Turnos) IniciarTurno(ctx context.Context, mesarioID string, mesa domain.Mesa) (domain.Sessao, domain.Participacao, error) {
	mesarioID = strings.TrimSpace(mesarioID)
	if mesarioID == "" {
		return domain.Sessao{}, domain.Participacao{}, fmt.Errorf("%w: mesario obrigatorio", domain.ErrSessaoInvalida)
	}
	mesa = mesa.Normalizada()
	if !mesa.Valida() {
		return domain.Sessao{}, domain.Participacao{}, domain.ErrMesaInvalida
	}

	p, err := t.ledger.GarantirParticipacao(ctx, mesa)
	if err != nil {
		return domain.Sessao{}, domain.Participacao{}, err
	}
	if p.Encerrada {
		return domain.Sessao{}, domain.Participacao{}, domain.ErrMesaEncerrada
	}

	agora := t.clock.Agora()
	sessao := domain.Sessao{
		ID:         t.ids.NovaSessao(),
		MesarioID:  mesarioID,
		Mesa:       mesa,
		IniciadaEm: agora,
		ExpiraEm:   agora.Add(t.ttl),
	}
	if err := t.sessoes.Abrir(ctx, sessao); err != nil {
		return domain.Sessao{}, domain.Participacao{}, err
	}

	t.logger.Info("turno iniciado", "sessao", sessao.ID, "escola", mesa.Escola, "mesa", mesa.Numero)
	return sessao, p, nil
}

func (t *Turnos) EncerrarTurno(ctx context.Context, id domain.SessaoID) error {
	if id == "" {
		return domain.ErrSessaoInvalida
	}
	return t.sessoes.Encerrar(ctx, id)
}

// Resolver traduz o identificador recebido pela borda na sessão registrada.
func (t *Turnos) Resolver(ctx context.Context, id domain.SessaoID) (*domain.Sessao, error) {
	if id == "" {
		return nil, domain.ErrSessaoInvalida
	}
	sessao, err := t.sessoes.Buscar(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessaoInvalida
		}
		return nil, err
	}
	if sessao.ExpiradaEm(t.clock.Agora()) {
		return nil, fmt.Errorf("%w: expirada", domain.ErrSessaoInvalida)
	}
	return &sessao, nil
}

func (t *Turnos) EncerrarMesa(ctx context.Context, sessao *domain.Sessao) (domain.Resultado, error) {
	if err := validarSessao(ctx, t.sessoes, t.clock, sessao); err != nil {
		return domain.Resultado{}, err
	}

	mesa := sessao.Mesa
	if err := t.ledger.Encerrar(ctx, mesa); err != nil {
		return domain.Resultado{}, err
	}
	metrics.IncMesaEncerrada()

	res, err := t.ledger.Parcial(ctx, mesa)
	if err != nil {
		return domain.Resultado{}, err
	}

	t.logger.Info("mesa encerrada", "sessao", sessao.ID, "escola", mesa.Escola, "mesa", mesa.Numero, "total", res.TotalVotaram)
	publicarEvento(ctx, t.fila, t.logger, domain.EventoParticipacao{
		Tipo:         domain.EventoMesaEncerrada,
		Escola:       mesa.Escola,
		Numero:       mesa.Numero,
		TotalVotaram: res.TotalVotaram,
		OcorridoEm:   t.clock.Agora(),
	})

	return res, nil
}
