package domain

import (
	"context"
	"time"
)

type EleitoradoRepository interface {
	Obter(ctx context.Context, mesa Mesa) (Eleitorado, error)
}

// ParticipacaoRepository executa cada transição do ledger como uma única operação atômica.
type ParticipacaoRepository interface {
	Garantir(ctx context.Context, p Participacao) (Participacao, error)
	// Incrementar soma delta se a mesa estiver aberta; com registro != nil grava a auditoria na mesma transação.
	Incrementar(ctx context.Context, mesa Mesa, delta int64, em time.Time, registro *RegistroVoto) (Participacao, error)
	Encerrar(ctx context.Context, mesa Mesa, em time.Time) error
	Obter(ctx context.Context, mesa Mesa) (Participacao, error)
}

type RegistroRepository interface {
	BuscarPorChave(ctx context.Context, chave string) (RegistroVoto, error)
	ListarPorSessao(ctx context.Context, sessaoID SessaoID, limite int) ([]RegistroVoto, error)
}

type SessaoRegistry interface {
	Abrir(ctx context.Context, sessao Sessao) error
	Buscar(ctx context.Context, id SessaoID) (Sessao, error)
	Encerrar(ctx context.Context, id SessaoID) error
}

type Painel interface {
	RegistrarTotal(ctx context.Context, mesa Mesa, total int64) (int64, error)
	RegistrarEncerramento(ctx context.Context, mesa Mesa) error
	ObterEscola(ctx context.Context, escola string) (PainelEscola, error)
}

type Fila interface {
	PublicarEvento(ctx context.Context, evento EventoParticipacao) error
	ConsumirEventos(ctx context.Context, handler func(context.Context, EventoParticipacao) error) error
}

type Antifraude interface {
	Validar(ctx context.Context, sessao Sessao) error
}

type Clock interface {
	Agora() time.Time
}

type ParticipacaoService interface {
	IniciarTurno(ctx context.Context, mesarioID string, mesa Mesa) (Sessao, Participacao, error)
	EncerrarTurno(ctx context.Context, id SessaoID) error
	ResolverSessao(ctx context.Context, id SessaoID) (*Sessao, error)
	RegistrarVotos(ctx context.Context, sessao *Sessao, sub Submissao) (Resultado, error)
	Historico(ctx context.Context, sessao *Sessao, limite int) ([]RegistroVoto, error)
	EncerrarMesa(ctx context.Context, sessao *Sessao) (Resultado, error)
	Parcial(ctx context.Context, mesa Mesa) (Resultado, error)
	PainelEscola(ctx context.Context, escola string) (PainelEscola, error)
}
