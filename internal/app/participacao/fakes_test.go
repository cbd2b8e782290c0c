package participacao

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/clock"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
)

// memStore simula o Postgres: incremento e auditoria mudam juntos sob o mesmo lock.
type memStore struct {
	mu            sync.Mutex
	participacoes map[domain.Mesa]domain.Participacao
	registros     []domain.RegistroVoto
	porChave      map[string]int
	garantias     int
}

func newMemStore() *memStore {
	return &memStore{
		participacoes: make(map[domain.Mesa]domain.Participacao),
		porChave:      make(map[string]int),
	}
}

func (m *memStore) Garantir(_ context.Context, p domain.Participacao) (domain.Participacao, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.garantias++
	if atual, ok := m.participacoes[p.Mesa()]; ok {
		return atual, nil
	}
	nova := domain.Participacao{Escola: p.Escola, Numero: p.Numero, AtualizadoEm: p.AtualizadoEm}
	m.participacoes[p.Mesa()] = nova
	return nova, nil
}

func (m *memStore) Incrementar(_ context.Context, mesa domain.Mesa, delta int64, em time.Time, registro *domain.RegistroVoto) (domain.Participacao, error) {
	if err := domain.ValidarDelta(delta); err != nil {
		return domain.Participacao{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participacoes[mesa]
	if !ok {
		return domain.Participacao{}, domain.ErrParticipacaoNaoEncontrada
	}
	if p.Encerrada {
		return domain.Participacao{}, domain.ErrMesaEncerrada
	}
	if registro != nil {
		if _, existe := m.porChave[registro.ChaveIdempotencia]; existe {
			return domain.Participacao{}, domain.ErrRegistroDuplicado
		}
	}

	p.TotalVotaram += delta
	p.AtualizadoEm = em
	m.participacoes[mesa] = p

	if registro != nil {
		reg := *registro
		reg.TotalApos = p.TotalVotaram
		m.porChave[reg.ChaveIdempotencia] = len(m.registros)
		m.registros = append(m.registros, reg)
	}
	return p, nil
}

func (m *memStore) Encerrar(_ context.Context, mesa domain.Mesa, em time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participacoes[mesa]
	if !ok {
		return domain.ErrParticipacaoNaoEncontrada
	}
	p.Encerrada = true
	p.AtualizadoEm = em
	m.participacoes[mesa] = p
	return nil
}

func (m *memStore) Obter(_ context.Context, mesa domain.Mesa) (domain.Participacao, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participacoes[mesa]
	if !ok {
		return domain.Participacao{}, domain.ErrParticipacaoNaoEncontrada
	}
	return p, nil
}

func (m *memStore) BuscarPorChave(_ context.Context, chave string) (domain.RegistroVoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.porChave[chave]
	if !ok {
		return domain.RegistroVoto{}, domain.ErrNotFound
	}
	return m.registros[i], nil
}

func (m *memStore) ListarPorSessao(_ context.Context, sessaoID domain.SessaoID, limite int) ([]domain.RegistroVoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limite <= 0 {
		limite = 20
	}
	if limite > 100 {
		limite = 100
	}
	var lista []domain.RegistroVoto
	for _, reg := range m.registros {
		if reg.SessaoID == sessaoID {
			lista = append(lista, reg)
		}
	}
	sort.Slice(lista, func(i, j int) bool {
		if !lista[i].RegistradoEm.Equal(lista[j].RegistradoEm) {
			return lista[i].RegistradoEm.After(lista[j].RegistradoEm)
		}
		return lista[i].ID > lista[j].ID
	})
	if len(lista) > limite {
		lista = lista[:limite]
	}
	return lista, nil
}

func (m *memStore) totalRegistros() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registros)
}

type memEleitorados map[domain.Mesa]int64

func (m memEleitorados) Obter(_ context.Context, mesa domain.Mesa) (domain.Eleitorado, error) {
	eleitores, ok := m[mesa]
	if !ok {
		return domain.Eleitorado{}, domain.ErrNotFound
	}
	return domain.Eleitorado{Escola: mesa.Escola, Numero: mesa.Numero, Eleitores: eleitores}, nil
}

type memSessoes struct {
	mu      sync.Mutex
	sessoes map[domain.SessaoID]domain.Sessao
}

func newMemSessoes() *memSessoes {
	return &memSessoes{sessoes: make(map[domain.SessaoID]domain.Sessao)}
}

func (m *memSessoes) Abrir(_ context.Context, s domain.Sessao) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessoes[s.ID] = s
	return nil
}

func (m *memSessoes) Buscar(_ context.Context, id domain.SessaoID) (domain.Sessao, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessoes[id]
	if !ok {
		return domain.Sessao{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memSessoes) Encerrar(_ context.Context, id domain.SessaoID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessoes, id)
	return nil
}

type recordingFila struct {
	mu      sync.Mutex
	eventos []domain.EventoParticipacao
	falha   error
}

func (r *recordingFila) PublicarEvento(_ context.Context, evento domain.EventoParticipacao) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.falha != nil {
		return r.falha
	}
	r.eventos = append(r.eventos, evento)
	return nil
}

func (r *recordingFila) ConsumirEventos(ctx context.Context, handler func(context.Context, domain.EventoParticipacao) error) error {
	for _, ev := range r.Drain() {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *recordingFila) Drain() []domain.EventoParticipacao {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := make([]domain.EventoParticipacao, len(r.eventos))
	copy(copia, r.eventos)
	r.eventos = nil
	return copia
}

var errLimite = errors.New("limite atingido")

type antifraudeFixa struct {
	err error
}

func (a antifraudeFixa) Validar(context.Context, domain.Sessao) error { return a.err }

var (
	mesaPadrao   = domain.Mesa{Escola: "escola-1", Numero: "1"}
	mesaSemRolo  = domain.Mesa{Escola: "escola-9", Numero: "99"}
	mesaSemVotos = domain.Mesa{Escola: "escola-1", Numero: "2"}
)

type cenario struct {
	store       *memStore
	sessoes     *memSessoes
	fila        *recordingFila
	clock       *clock.Manual
	eleitorados memEleitorados
	service     *Service
}

func novoCenario(t *testing.T) *cenario {
	t.Helper()
	c := &cenario{
		store:   newMemStore(),
		sessoes: newMemSessoes(),
		fila:    &recordingFila{},
		clock:   clock.NewManual(time.Date(2025, 10, 26, 8, 0, 0, 0, time.UTC)),
		eleitorados: memEleitorados{
			mesaPadrao:   1000,
			mesaSemVotos: 0,
		},
	}
	c.service = NewService(Dependencias{
		Participacoes: c.store,
		Eleitorados:   c.eleitorados,
		Registros:     c.store,
		Sessoes:       c.sessoes,
		Fila:          c.fila,
		Clock:         c.clock,
		IDs:           ids.NewGenerator(),
		SessaoTTL:     8 * time.Hour,
	})
	return c
}

func (c *cenario) abrirTurno(t *testing.T, mesa domain.Mesa) *domain.Sessao {
	t.Helper()
	sessao, _, err := c.service.IniciarTurno(context.Background(), "mesario-1", mesa)
	if err != nil {
		t.Fatalf("erro iniciando turno: %v", err)
	}
	return &sessao
}
