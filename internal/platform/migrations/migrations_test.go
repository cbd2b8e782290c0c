package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestRun_DeveCriarTabelasESerReexecutavel(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	for _, tabela := range []string{"eleitorados", "participacoes", "registros_votos"} {
		assert.True(t, db.Migrator().HasTable(tabela), "tabela %s ausente", tabela)
	}
	assert.True(t, db.Migrator().HasIndex("registros_votos", "idx_registros_chave"))
}

func TestRollbackLast_DeveRemoverRegistros(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Run(db))

	require.NoError(t, RollbackLast(db))

	assert.False(t, db.Migrator().HasTable("registros_votos"))
	assert.True(t, db.Migrator().HasTable("participacoes"))
}

func TestRun_QuandoDBNulo_DeveFalhar(t *testing.T) {
	assert.Error(t, Run(nil))
	assert.Error(t, RollbackLast(nil))
}
