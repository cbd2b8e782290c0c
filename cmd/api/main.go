// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/participacao-mesas/internal/app/httpapi"
	"github.com/marcelojr/participacao-mesas/internal/app/participacao"
	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/antifraude"
	"github.com/marcelojr/participacao-mesas/internal/platform/clock"
	"github.com/marcelojr/participacao-mesas/internal/platform/config"
	"github.com/marcelojr/participacao-mesas/internal/platform/health"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	"github.com/marcelojr/participacao-mesas/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/participacao-mesas/internal/platform/storage/postgres"
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

	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN(), postgresstorage.DefaultPool())
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis guarda sessões, fila do painel e antifraude; sem ele nenhum mesário autentica.
	redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	clockSystem := clock.NewSystemClock()

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow(), cfg.RateLimitKeyPrefix)
	}

	servico := participacao.NewService(participacao.Dependencias{
		Participacoes: postgresstorage.NewParticipacaoRepository(db),
		Eleitorados:   postgresstorage.NewEleitoradoRepository(db),
		Registros:     postgresstorage.NewRegistroRepository(db),
		Sessoes:       redisstorage.NewSessaoRegistry(redisClient, cfg.SessaoPrefix, clockSystem),
		Fila:          redisstorage.NewFila(redisClient, cfg.FilaKey),
		Antifraude:    antifraudeSvc,
		Painel:        redisstorage.NewPainel(redisClient, cfg.PainelPrefix),
		Clock:         clockSystem,
		IDs:           ids.NewGenerator(),
		SessaoTTL:     cfg.SessaoTTL,
		Logger:        logger.L(),
	})

	router := mux.NewRouter()
	checker := health.NewChecker(sqlDB, redisClient)

	httpapi.New(servico, logger.L()).Register(router)
	router.HandleFunc("/readyz", checker.ReadyHandler()).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro no shutdown do servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
