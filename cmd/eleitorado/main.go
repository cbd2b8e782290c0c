// Importa o eleitorado por mesa a partir de um CSV escola,mesa,eleitores.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelojr/participacao-mesas/internal/app/eleitorado"
	"github.com/marcelojr/participacao-mesas/internal/platform/clock"
	"github.com/marcelojr/participacao-mesas/internal/platform/config"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	"github.com/marcelojr/participacao-mesas/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/participacao-mesas/internal/platform/storage/postgres"
)

func main() {
	arquivo := flag.String("arquivo", "", "caminho do CSV escola,mesa,eleitores")
	flag.Parse()

	if *arquivo == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}

	f, err := os.Open(*arquivo)
	if err != nil {
		logger.Fatal("falha ao abrir arquivo", "arquivo", *arquivo, "err", err)
	}
	defer f.Close()

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

	importador := eleitorado.NewImportador(postgresstorage.NewEleitoradoRepository(db), clock.NewSystemClock(), logger.L())
	if _, err := importador.Importar(ctx, f); err != nil {
		logger.Fatal("falha ao importar eleitorado", "arquivo", *arquivo, "err", err)
	}
}
