package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// Generator produz ULIDs monotônicos para registros: ids criados no mesmo milissegundo continuam ordenáveis.
// Sessões não usam a sequência monotônica; o id da sessão é a credencial do mesário.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

// NovaSessao sorteia 80 bits novos do crypto/rand a cada chamada, então o id vizinho não é dedutível.
func (g *Generator) NovaSessao() domain.SessaoID {
	return domain.SessaoID(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

func (g *Generator) NovoRegistro() domain.RegistroID {
	return domain.RegistroID(g.New())
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func DefaultGenerator() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}
