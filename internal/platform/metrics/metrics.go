package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissoesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "participacao_submissoes_total",
		Help: "Submissoes de votos recebidas por status",
	}, []string{"status"})

	votosContabilizadosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "participacao_votos_contabilizados_total",
		Help: "Soma das quantidades efetivamente aplicadas ao ledger",
	})

	reenviosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "participacao_reenvios_total",
		Help: "Submissoes repetidas respondidas sem recontar",
	})

	mesasEncerradasTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "participacao_mesas_encerradas_total",
		Help: "Encerramentos de mesa solicitados",
	})

	eventosProcessadosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "participacao_eventos_processados_total",
		Help: "Eventos consumidos pelo worker do painel",
	}, []string{"tipo"})

	eventoProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "participacao_evento_processing_duration_seconds",
		Help:    "Tempo para aplicar um evento no painel",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveSubmissao(status string) {
	submissoesTotal.WithLabelValues(status).Inc()
}

func AddVotosContabilizados(quantidade int64) {
	votosContabilizadosTotal.Add(float64(quantidade))
}

func IncReenvio() {
	reenviosTotal.Inc()
}

func IncMesaEncerrada() {
	mesasEncerradasTotal.Inc()
}

func IncEventoProcessado(tipo string) {
	eventosProcessadosTotal.WithLabelValues(tipo).Inc()
}

func ObserveProcessingDuration(seconds float64) {
	eventoProcessingDuration.Observe(seconds)
}
