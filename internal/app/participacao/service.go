package participacao

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
)

var ErrPainelIndisponivel = errors.New("painel indisponivel")

// Dependencias reúne as portas usadas pela fachada; Fila, Antifraude e Painel são opcionais.
type Dependencias struct {
	Participacoes domain.ParticipacaoRepository
	Eleitorados   domain.EleitoradoRepository
	Registros     domain.RegistroRepository
	Sessoes       domain.SessaoRegistry
	Fila          domain.Fila
	Antifraude    domain.Antifraude
	Painel        domain.Painel
	Clock         domain.Clock
	IDs           *ids.Generator
	SessaoTTL     time.Duration
	Logger        *slog.Logger
}

// Service é a fachada consumida pela API HTTP.
type Service struct {
	ledger      *Ledger
	registrador *Registrador
	turnos      *Turnos
	painel      domain.Painel
}

func NewService(deps Dependencias) *Service {
	ledger := NewLedger(deps.Participacoes, deps.Eleitorados, deps.Clock)
	return &Service{
		ledger:      ledger,
		registrador: NewRegistrador(ledger, deps.Registros, deps.Sessoes, deps.Fila, deps.Antifraude, deps.Clock, deps.IDs, deps.Logger),
		turnos:      NewTurnos(ledger, deps.Sessoes, deps.Fila, deps.Clock, deps.IDs, deps.SessaoTTL, deps.Logger),
		painel:      deps.Painel,
	}
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

func (s *Service) IniciarTurno(ctx context.Context, mesarioID string, mesa domain.Mesa) (domain.Sessao, domain.Participacao, error) {
	return s.turnos.IniciarTurno(ctx, mesarioID, mesa)
}

func (s *Service) EncerrarTurno(ctx context.Context, id domain.SessaoID) error {
	return s.turnos.EncerrarTurno(ctx, id)
}

func (s *Service) ResolverSessao(ctx context.Context, id domain.SessaoID) (*domain.Sessao, error) {
	return s.turnos.Resolver(ctx, id)
}

func (s *Service) RegistrarVotos(ctx context.Context, sessao *domain.Sessao, sub domain.Submissao) (domain.Resultado, error) {
	return s.registrador.RegistrarVotos(ctx, sessao, sub)
}

func (s *Service) Historico(ctx context.Context, sessao *domain.Sessao, limite int) ([]domain.RegistroVoto, error) {
	return s.registrador.Historico(ctx, sessao, limite)
}

func (s *Service) EncerrarMesa(ctx context.Context, sessao *domain.Sessao) (domain.Resultado, error) {
	return s.turnos.EncerrarMesa(ctx, sessao)
}

func (s *Service) Parcial(ctx context.Context, mesa domain.Mesa) (domain.Resultado, error) {
	return s.ledger.Parcial(ctx, mesa)
}

// PainelEscola lê a projeção assíncrona mantida pelo worker; pode estar atrás do ledger.
func (s *Service) PainelEscola(ctx context.Context, escola string) (domain.PainelEscola, error) {
	escola = strings.TrimSpace(escola)
	if escola == "" {
		return domain.PainelEscola{}, domain.ErrMesaInvalida
	}
	if s.painel == nil {
		return domain.PainelEscola{}, ErrPainelIndisponivel
	}
	return s.painel.ObterEscola(ctx, escola)
}

var _ domain.ParticipacaoService = (*Service)(nil)
