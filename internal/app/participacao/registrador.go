package participacao

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/marcelojr/participacao-mesas/internal/domain"
	"github.com/marcelojr/participacao-mesas/internal/platform/ids"
	"github.com/marcelojr/participacao-mesas/internal/platform/logger"
	"github.com/marcelojr/participacao-mesas/internal/platform/metrics"
)

const tamanhoMaximoChave = 100

// Registrador recebe as submissões dos mesários e as aplica no ledger uma única vez por chave.
type Registrador struct {
	ledger     *Ledger
	registros  domain.RegistroRepository
	sessoes    domain.SessaoRegistry
	fila       domain.Fila
	antifraude domain.Antifraude
	clock      domain.Clock
	ids        *ids.Generator
	logger     *slog.Logger
}

func NewRegistrador(
	ledger *Ledger,
	registros domain.RegistroRepository,
	sessoes domain.SessaoRegistry,
	fila domain.Fila,
	antifraude domain.Antifraude,
	clock domain.Clock,
	idsGen *ids.Generator,
	log *slog.Logger,
) *Registrador {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Registrador{
		ledger:     ledger,
		registros:  registros,
		sessoes:    sessoes,
		fila:       fila,
		antifraude: antifraude,
		clock:      clock,
		ids:        idsGen,
		logger:     logger.Ou(log),
	}
}

func (r *Registrador) RegistrarVotos(ctx context.Context, sessao *domain.Sessao, sub domain.Submissao) (domain.Resultado, error) {
	if err := validarSessao(ctx, r.sessoes, r.clock, sessao); err != nil {
		return domain.Resultado{}, err
	}
	if err := domain.ValidarDelta(sub.Quantidade); err != nil {
		return domain.Resultado{}, err
	}

	chave := strings.TrimSpace(sub.ChaveIdempotencia)
	if chave == "" {
		return domain.Resultado{}, domain.ErrChaveIdempotenciaObrigatoria
	}
	if len(chave) > tamanhoMaximoChave {
		return domain.Resultado{}, fmt.Errorf("%w: maximo de %d caracteres", domain.ErrChaveIdempotenciaInvalida, tamanhoMaximoChave)
	}

	mesa := sessao.Mesa
	impressao := impressaoSubmissao(mesa, sub.Quantidade)

	if res, ok, err := r.reenvio(ctx, chave, impressao); err != nil || ok {
		return res, err
	}

	if r.antifraude != nil {
		if err := r.antifraude.Validar(ctx, *sessao); err != nil {
			return domain.Resultado{}, err
		}
	}

	registro := domain.RegistroVoto{
		ID:                r.ids.NovoRegistro(),
		SessaoID:          sessao.ID,
		Escola:            mesa.Escola,
		Numero:            mesa.Numero,
		Quantidade:        sub.Quantidade,
		ChaveIdempotencia: chave,
		Impressao:         impressao,
		RegistradoEm:      r.clock.Agora(),
	}

	res, err := r.ledger.aplicar(ctx, mesa, sub.Quantidade, &registro)
	if errors.Is(err, domain.ErrParticipacaoNaoEncontrada) {
		// Primeira submissão de uma mesa cujo turno não criou a participação.
		if _, gErr := r.ledger.GarantirParticipacao(ctx, mesa); gErr != nil {
			return domain.Resultado{}, gErr
		}
		res, err = r.ledger.aplicar(ctx, mesa, sub.Quantidade, &registro)
	}
	if errors.Is(err, domain.ErrRegistroDuplicado) {
		res, ok, rErr := r.reenvio(ctx, chave, impressao)
		if rErr != nil {
			return domain.Resultado{}, rErr
		}
		if !ok {
			return domain.Resultado{}, err
		}
		return res, nil
	}
	if err != nil {
		return domain.Resultado{}, err
	}

	metrics.AddVotosContabilizados(sub.Quantidade)
	if res.ExcedeEleitorado {
		r.logger.Warn("total acima do eleitorado",
			"escola", mesa.Escola,
			"mesa", mesa.Numero,
			"total", res.TotalVotaram,
			"eleitores", res.Eleitores,
		)
	}

	r.publicar(ctx, domain.EventoParticipacao{
		Tipo:         domain.EventoVotosRegistrados,
		Escola:       mesa.Escola,
		Numero:       mesa.Numero,
		Quantidade:   sub.Quantidade,
		TotalVotaram: res.TotalVotaram,
		OcorridoEm:   registro.RegistradoEm,
	})

	return res, nil
}

// reenvio responde uma chave já gravada com o total que ela produziu, sem recontar.
func (r *Registrador) reenvio(ctx context.Context, chave, impressao string) (domain.Resultado, bool, error) {
	reg, err := r.registros.BuscarPorChave(ctx, chave)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Resultado{}, false, nil
	}
	if err != nil {
		return domain.Resultado{}, false, err
	}
	if reg.Impressao != impressao {
		return domain.Resultado{}, false, domain.ErrConflitoIdempotencia
	}

	atual, err := r.ledger.Parcial(ctx, reg.Mesa())
	if err != nil {
		return domain.Resultado{}, false, err
	}

	res := domain.NovoResultado(domain.Participacao{
		Escola:       reg.Escola,
		Numero:       reg.Numero,
		TotalVotaram: reg.TotalApos,
		Encerrada:    atual.Encerrada,
	}, atual.Eleitores)
	res.Reenvio = true

	metrics.IncReenvio()
	return res, true, nil
}

func (r *Registrador) Historico(ctx context.Context, sessao *domain.Sessao, limite int) ([]domain.RegistroVoto, error) {
	if err := validarSessao(ctx, r.sessoes, r.clock, sessao); err != nil {
		return nil, err
	}
	return r.registros.ListarPorSessao(ctx, sessao.ID, limite)
}

// publicar não propaga falhas: o registro já está confirmado no ledger.
func (r *Registrador) publicar(ctx context.Context, evento domain.EventoParticipacao) {
	publicarEvento(ctx, r.fila, r.logger, evento)
}

func publicarEvento(ctx context.Context, fila domain.Fila, log *slog.Logger, evento domain.EventoParticipacao) {
	if fila == nil {
		return
	}
	if err := fila.PublicarEvento(ctx, evento); err != nil {
		log.Error("falha ao publicar evento",
			"err", err,
			"tipo", evento.Tipo,
			"escola", evento.Escola,
			"mesa", evento.Numero,
		)
	}
}

func impressaoSubmissao(mesa domain.Mesa, quantidade int64) string {
	sum := sha256.Sum256([]byte(mesa.Escola + "|" + mesa.Numero + "|" + strconv.FormatInt(quantidade, 10)))
	return hex.EncodeToString(sum[:])
}
