// Pacote eleitorado lê o padrão de eleitores por mesa e o grava no repositório.
package eleitorado

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
)

var ErrArquivoInvalido = errors.New("arquivo de eleitorado invalido")

type Gravador interface {
	Importar(ctx context.Context, eleitorados []domain.Eleitorado, em time.Time) (int64, error)
}

// LerCSV aceita linhas escola,mesa,eleitores com cabeçalho opcional.
func LerCSV(r io.Reader) ([]domain.Eleitorado, error) {
	leitor := csv.NewReader(r)
	leitor.FieldsPerRecord = 3
	leitor.TrimLeadingSpace = true
	leitor.Comment = '#'

	var (
		lista  []domain.Eleitorado
		vistos = make(map[domain.Mesa]int)
		linha  int
	)
	for {
		registro, err := leitor.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArquivoInvalido, err)
		}
		linha++

		if linha == 1 && strings.EqualFold(strings.TrimSpace(registro[2]), "eleitores") {
			continue
		}

		mesa := domain.Mesa{Escola: strings.TrimSpace(registro[0]), Numero: strings.TrimSpace(registro[1])}
		if !mesa.Valida() {
			return nil, fmt.Errorf("%w: linha %d: mesa invalida", ErrArquivoInvalido, linha)
		}
		eleitores, err := strconv.ParseInt(strings.TrimSpace(registro[2]), 10, 64)
		if err != nil || eleitores < 0 {
			return nil, fmt.Errorf("%w: linha %d: eleitores invalido %q", ErrArquivoInvalido, linha, registro[2])
		}
		if anterior, ok := vistos[mesa]; ok {
			return nil, fmt.Errorf("%w: linha %d: mesa %s repetida (linha %d)", ErrArquivoInvalido, linha, mesa, anterior)
		}
		vistos[mesa] = linha

		lista = append(lista, domain.Eleitorado{Escola: mesa.Escola, Numero: mesa.Numero, Eleitores: eleitores})
	}

	if len(lista) == 0 {
		return nil, fmt.Errorf("%w: nenhuma mesa", ErrArquivoInvalido)
	}
	return lista, nil
}

type Importador struct {
	gravador Gravador
	clock    domain.Clock
	logger   *slog.Logger
}

func NewImportador(gravador Gravador, clock domain.Clock, log *slog.Logger) *Importador {
	return &Importador{gravador: gravador, clock: clock, logger: logger.Ou(log)}
}

func (i *Importador) Importar(ctx context.Context, r io.Reader) (int64, error) {
	lista, err := LerCSV(r)
	if err != nil {
		return 0, err
	}

	gravadas, err := i.gravador.Importar(ctx, lista, i.clock.Agora())
	if err != nil {
		return 0, err
	}

	i.logger.Info("eleitorado importado", "mesas", len(lista), "gravadas", gravadas)
	return gravadas, nil
}
