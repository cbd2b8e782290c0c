package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

func TestEleitoradoRepository_Importar_DeveGravarECorrigirExistentes(t *testing.T) {
	db := setupDB(t)
	repo := NewEleitoradoRepository(db)
	ctx := context.Background()
	agora := time.Now().UTC()

	_, err := repo.Importar(ctx, []domain.Eleitorado{
		{Escola: "escola-1", Numero: "1", Eleitores: 350},
		{Escola: "escola-1", Numero: "2", Eleitores: 0},
	}, agora)
	require.NoError(t, err)

	_, err = repo.Importar(ctx, []domain.Eleitorado{{Escola: "escola-1", Numero: "1", Eleitores: 360}}, agora)
	require.NoError(t, err)

	e, err := repo.Obter(ctx, domain.Mesa{Escola: "escola-1", Numero: "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(360), e.Eleitores)

	zerado, err := repo.Obter(ctx, domain.Mesa{Escola: "escola-1", Numero: "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), zerado.Eleitores)
}

func TestEleitoradoRepository_Importar_QuandoNegativo_DeveFalhar(t *testing.T) {
	db := setupDB(t)
	repo := NewEleitoradoRepository(db)

	_, err := repo.Importar(context.Background(), []domain.Eleitorado{{Escola: "e", Numero: "1", Eleitores: -1}}, time.Now().UTC())

	assert.Error(t, err)
}

func TestEleitoradoRepository_Obter_QuandoInexistente_DeveRetornarNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewEleitoradoRepository(db)

	_, err := repo.Obter(context.Background(), domain.Mesa{Escola: "nenhuma", Numero: "0"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
