// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

func lista() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202510200001_eleitorados_participacoes",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Eleitorado{}, &domain.Participacao{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("participacoes", "eleitorados")
			},
		},
		{
			ID: "202510200002_registros_votos",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.RegistroVoto{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("registros_votos")
			},
		},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, lista())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}

// RollbackLast desfaz a migração mais recente; usado em ambientes de homologação.
func RollbackLast(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, lista())
	if err := m.RollbackLast(); err != nil {
		return fmt.Errorf("migrations: falha no rollback: %w", err)
	}

	return nil
}
