// Worker assíncrono que consome eventos de participação da fila e mantém o painel por escola no Redis.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/participacao-mesas/internal/app/worker"
	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/config"
	"github.com/marcelojr/participacao-mesas/internal/platform/health"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	redisstorage "github.com/marcelojr/participacao-mesas/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// O worker só lê a fila e escreve o painel; o ledger no Postgres não passa por aqui.
	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	painel := redisstorage.NewPainel(redisClient, cfg.PainelPrefix)
	checker := health.NewChecker(nil, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	processor := worker.NewEventoProcessor(painel)

	logger.Info("worker iniciado, aguardando eventos")
	err = fila.ConsumirEventos(ctx, func(ctx context.Context, evento domain.EventoParticipacao) error {
		// Evento com erro é descartado com log; o próximo total da mesa corrige o painel.
		if err := processor.Process(ctx, evento); err != nil {
			logger.Error("erro ao processar evento", "tipo", evento.Tipo, "escola", evento.Escola, "mesa", evento.Numero, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}
