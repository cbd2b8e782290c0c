package clock

import (
	"sync"
	"time"
)

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Manual é um relógio controlado pelos testes.
type Manual struct {
	mu    sync.Mutex
	agora time.Time
}

func NewManual(inicio time.Time) *Manual {
	return &Manual{agora: inicio.UTC()}
}

func (m *Manual) Agora() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agora
}

func (m *Manual) Avancar(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agora = m.agora.Add(d)
}
