// Pacote worker projeta no painel Redis os eventos de participação publicados após cada escrita no ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/metrics"
)

// EventoProcessor é idempotente: entregas repetidas ou fora de ordem convergem para o maior total visto.
type EventoProcessor struct {
	painel domain.Painel
}

func NewEventoProcessor(painel domain.Painel) *EventoProcessor {
	return &EventoProcessor{painel: painel}
}

func (p *EventoProcessor) Process(ctx context.Context, evento domain.EventoParticipacao) error {
	start := time.Now()

	mesa := domain.Mesa{Escola: evento.Escola, Numero: evento.Numero}
	if !mesa.Valida() {
		return fmt.Errorf("worker: evento %s sem mesa valida: %w", evento.Tipo, domain.ErrMesaInvalida)
	}

	switch evento.Tipo {
	case domain.EventoVotosRegistrados:
		if _, err := p.painel.RegistrarTotal(ctx, mesa, evento.TotalVotaram); err != nil {
			return fmt.Errorf("worker: projetar total %s: %w", mesa, err)
		}
	case domain.EventoMesaEncerrada:
		// O total final também é projetado: o evento de encerramento pode chegar antes do último lote.
		if _, err := p.painel.RegistrarTotal(ctx, mesa, evento.TotalVotaram); err != nil {
			return fmt.Errorf("worker: projetar total final %s: %w", mesa, err)
		}
		if err := p.painel.RegistrarEncerramento(ctx, mesa); err != nil {
			return fmt.Errorf("worker: projetar encerramento %s: %w", mesa, err)
		}
	default:
		return fmt.Errorf("worker: tipo de evento desconhecido %q", evento.Tipo)
	}

	metrics.IncEventoProcessado(string(evento.Tipo))
	metrics.ObserveProcessingDuration(time.Since(start).Seconds())

	return nil
}
