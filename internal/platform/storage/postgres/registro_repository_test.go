package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
)

func TestRegistroRepository_ListarPorSessao_DeveOrdenarDoMaisRecenteELimitar(t *testing.T) {
	db := setupDB(t)
	participacoes := NewParticipacaoRepository(db)
	repo := NewRegistroRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()
	mesa := domain.Mesa{Escola: "escola-20", Numero: "1"}
	base := time.Date(2025, 10, 26, 8, 0, 0, 0, time.UTC)

	_, err := participacoes.Garantir(ctx, domain.Participacao{Escola: mesa.Escola, Numero: mesa.Numero, AtualizadoEm: base})
	require.NoError(t, err)

	// Arrange: cinco registros da sessão, um de outra sessão
	for i := 1; i <= 5; i++ {
		em := base.Add(time.Duration(i) * time.Minute)
		_, err := participacoes.Incrementar(ctx, mesa, int64(i), em, novoRegistro(gen, mesa, "sessao-a", int64(i), fmt.Sprintf("a-%d", i), em))
		require.NoError(t, err)
	}
	_, err = participacoes.Incrementar(ctx, mesa, 50, base, novoRegistro(gen, mesa, "sessao-b", 50, "b-1", base))
	require.NoError(t, err)

	// Act
	registros, err := repo.ListarPorSessao(ctx, "sessao-a", 3)

	// Assert
	require.NoError(t, err)
	require.Len(t, registros, 3)
	assert.Equal(t, int64(5), registros[0].Quantidade)
	assert.Equal(t, int64(4), registros[1].Quantidade)
	assert.Equal(t, int64(3), registros[2].Quantidade)
	for _, r := range registros {
		assert.Equal(t, domain.SessaoID("sessao-a"), r.SessaoID)
	}

	// Consulta pura: repetir devolve o mesmo resultado.
	novamente, err := repo.ListarPorSessao(ctx, "sessao-a", 3)
	require.NoError(t, err)
	assert.Equal(t, registros, novamente)
}

func TestRegistroRepository_ListarPorSessao_QuandoMesmoInstante_DeveDesempatarPorID(t *testing.T) {
	db := setupDB(t)
	participacoes := NewParticipacaoRepository(db)
	repo := NewRegistroRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()
	mesa := domain.Mesa{Escola: "escola-21", Numero: "1"}
	em := time.Date(2025, 10, 26, 9, 0, 0, 0, time.UTC)

	_, err := participacoes.Garantir(ctx, domain.Participacao{Escola: mesa.Escola, Numero: mesa.Numero, AtualizadoEm: em})
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := participacoes.Incrementar(ctx, mesa, int64(i), em, novoRegistro(gen, mesa, "sessao-a", int64(i), fmt.Sprintf("k-%d", i), em))
		require.NoError(t, err)
	}

	registros, err := repo.ListarPorSessao(ctx, "sessao-a", 10)

	require.NoError(t, err)
	require.Len(t, registros, 3)
	assert.Equal(t, int64(3), registros[0].Quantidade)
	assert.Equal(t, int64(1), registros[2].Quantidade)
}

func TestRegistroRepository_ListarPorSessao_QuandoLimiteForaDaFaixa_DeveAplicarPadraoETeto(t *testing.T) {
	db := setupDB(t)
	participacoes := NewParticipacaoRepository(db)
	repo := NewRegistroRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()
	mesa := domain.Mesa{Escola: "escola-22", Numero: "1"}
	em := time.Now().UTC()

	_, err := participacoes.Garantir(ctx, domain.Participacao{Escola: mesa.Escola, Numero: mesa.Numero, AtualizadoEm: em})
	require.NoError(t, err)
	for i := 0; i < historicoLimitePadrao+5; i++ {
		_, err := participacoes.Incrementar(ctx, mesa, 1, em, novoRegistro(gen, mesa, "sessao-a", 1, fmt.Sprintf("p-%d", i), em))
		require.NoError(t, err)
	}

	padrao, err := repo.ListarPorSessao(ctx, "sessao-a", 0)
	require.NoError(t, err)
	assert.Len(t, padrao, historicoLimitePadrao)

	teto, err := repo.ListarPorSessao(ctx, "sessao-a", 10_000)
	require.NoError(t, err)
	assert.Len(t, teto, historicoLimitePadrao+5)
}

func TestRegistroRepository_BuscarPorChave_QuandoInexistente_DeveRetornarNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewRegistroRepository(db)

	_, err := repo.BuscarPorChave(context.Background(), "nao-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
