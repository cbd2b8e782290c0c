package domain

import (
	"fmt"
	"strings"
	"time"
)

type (
	SessaoID   string
	RegistroID string
)

// Mesa identifica uma mesa de votação dentro de uma escola.
type Mesa struct {
	Escola string `json:"escola"`
	Numero string `json:"numero_mesa"`
}

const tamanhoMaximoIdentificador = 32

// Normalizada remove os espaços das pontas; é a forma gravada e consultada.
func (m Mesa) Normalizada() Mesa {
	return Mesa{Escola: strings.TrimSpace(m.Escola), Numero: strings.TrimSpace(m.Numero)}
}

func (m Mesa) Valida() bool {
	escola := strings.TrimSpace(m.Escola)
	numero := strings.TrimSpace(m.Numero)
	return escola != "" && numero != "" &&
		len(escola) <= tamanhoMaximoIdentificador && len(numero) <= tamanhoMaximoIdentificador
}

func (m Mesa) String() string {
	return m.Escola + "/" + m.Numero
}

// DeltaMaximo limita um único incremento; nenhuma mesa recebe tantos votos de uma vez.
const DeltaMaximo int64 = 100_000

func ValidarDelta(delta int64) error {
	if delta <= 0 || delta > DeltaMaximo {
		return fmt.Errorf("%w: %d", ErrDeltaInvalido, delta)
	}
	return nil
}

// Eleitorado guarda a quantidade de eleitores aptos de uma mesa.
type Eleitorado struct {
	Escola    string    `gorm:"column:escola;type:varchar(32);primaryKey" json:"escola"`
	Numero    string    `gorm:"column:numero_mesa;type:varchar(32);primaryKey" json:"numero_mesa"`
	Eleitores int64     `gorm:"column:eleitores_registrados;not null;default:0" json:"eleitores_registrados"`
	CriadoEm  time.Time `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

func (e Eleitorado) Mesa() Mesa { return Mesa{Escola: e.Escola, Numero: e.Numero} }

type EstadoMesa string

const (
	EstadoNaoCriada EstadoMesa = "nao_criada"
	EstadoAberta    EstadoMesa = "aberta"
	EstadoEncerrada EstadoMesa = "encerrada"
)

// Participacao é o total corrente de votantes de uma mesa.
type Participacao struct {
	Escola       string    `gorm:"column:escola;type:varchar(32);primaryKey" json:"escola"`
	Numero       string    `gorm:"column:numero_mesa;type:varchar(32);primaryKey" json:"numero_mesa"`
	TotalVotaram int64     `gorm:"column:total_votaram;not null;default:0" json:"total_votaram"`
	Encerrada    bool      `gorm:"column:encerrada;not null;default:false" json:"encerrada"`
	AtualizadoEm time.Time `gorm:"column:atualizado_em;not null" json:"atualizado_em"`
}

func (p Participacao) Mesa() Mesa { return Mesa{Escola: p.Escola, Numero: p.Numero} }

func (p Participacao) Estado() EstadoMesa {
	switch {
	case p.Escola == "" && p.Numero == "":
		return EstadoNaoCriada
	case p.Encerrada:
		return EstadoEncerrada
	default:
		return EstadoAberta
	}
}

// RegistroVoto é a trilha de auditoria de cada submissão aceita.
type RegistroVoto struct {
	ID                RegistroID `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	SessaoID          SessaoID   `gorm:"column:sessao_id;type:char(26);not null;index:idx_registros_sessao,priority:1" json:"sessao_id"`
	Escola            string     `gorm:"column:escola;type:varchar(32);not null;index:idx_registros_mesa,priority:1" json:"escola"`
	Numero            string     `gorm:"column:numero_mesa;type:varchar(32);not null;index:idx_registros_mesa,priority:2" json:"numero_mesa"`
	Quantidade        int64      `gorm:"column:quantidade;not null" json:"quantidade"`
	ChaveIdempotencia string     `gorm:"column:chave_idempotencia;type:varchar(100);not null;uniqueIndex:idx_registros_chave" json:"chave_idempotencia"`
	Impressao         string     `gorm:"column:impressao;type:char(64);not null" json:"-"`
	TotalApos         int64      `gorm:"column:total_apos;not null" json:"total_apos"`
	RegistradoEm      time.Time  `gorm:"column:registrado_em;not null;index:idx_registros_sessao,priority:2" json:"registrado_em"`
}

func (r RegistroVoto) Mesa() Mesa { return Mesa{Escola: r.Escola, Numero: r.Numero} }

// Sessao representa o turno de um mesário vinculado a uma mesa.
type Sessao struct {
	ID         SessaoID  `json:"id"`
	MesarioID  string    `json:"mesario_id"`
	Mesa       Mesa      `json:"mesa"`
	IniciadaEm time.Time `json:"iniciada_em"`
	ExpiraEm   time.Time `json:"expira_em"`
}

func (s Sessao) ExpiradaEm(agora time.Time) bool {
	return !s.ExpiraEm.IsZero() && !agora.Before(s.ExpiraEm)
}

// Submissao é a entrada de um registro de votos já convertida para inteiro pela borda.
type Submissao struct {
	Quantidade        int64
	ChaveIdempotencia string
}

// Resultado é a resposta de uma operação sobre o total da mesa.
type Resultado struct {
	Mesa             Mesa       `json:"mesa"`
	TotalVotaram     int64      `json:"total_votaram"`
	Percentual       Percentual `json:"percentual"`
	Eleitores        int64      `json:"eleitores_registrados"`
	ExcedeEleitorado bool       `json:"excede_eleitorado"`
	Encerrada        bool       `json:"encerrada"`
	Reenvio          bool       `json:"reenvio,omitempty"`
}

func NovoResultado(p Participacao, eleitores int64) Resultado {
	return Resultado{
		Mesa:             p.Mesa(),
		TotalVotaram:     p.TotalVotaram,
		Percentual:       CalcularPercentual(p.TotalVotaram, eleitores),
		Eleitores:        eleitores,
		ExcedeEleitorado: p.TotalVotaram > eleitores,
		Encerrada:        p.Encerrada,
	}
}

type TipoEvento string

const (
	EventoVotosRegistrados TipoEvento = "votos_registrados"
	EventoMesaEncerrada    TipoEvento = "mesa_encerrada"
)

// EventoParticipacao é publicado na fila depois que uma escrita no ledger foi confirmada.
type EventoParticipacao struct {
	Tipo         TipoEvento `json:"tipo"`
	Escola       string     `json:"escola"`
	Numero       string     `json:"numero_mesa"`
	Quantidade   int64      `json:"quantidade,omitempty"`
	TotalVotaram int64      `json:"total_votaram"`
	OcorridoEm   time.Time  `json:"ocorrido_em"`
}

// PainelEscola agrega o último total conhecido de cada mesa de uma escola.
type PainelEscola struct {
	Escola            string           `json:"escola"`
	TotaisPorMesa     map[string]int64 `json:"totais_por_mesa"`
	MesasEncerradas   []string         `json:"mesas_encerradas"`
	TotalVotaramGeral int64            `json:"total_votaram"`
}

func (Eleitorado) TableName() string { return "eleitorados" }

func (Participacao) TableName() string { return "participacoes" }

func (RegistroVoto) TableName() string { return "registros_votos" }
