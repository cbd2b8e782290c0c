package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// ParticipacaoRepository guarda o total corrente por mesa e a trilha de registros que o compõe.
type ParticipacaoRepository struct {
	db *gorm.DB
}

func NewParticipacaoRepository(db *gorm.DB) *ParticipacaoRepository {
	return &ParticipacaoRepository{db: db}
}

type participacaoModel struct {
	Escola       string    `gorm:"column:escola;primaryKey"`
	Numero       string    `gorm:"column:numero_mesa;primaryKey"`
	TotalVotaram int64     `gorm:"column:total_votaram"`
	Encerrada    bool      `gorm:"column:encerrada"`
	AtualizadoEm time.Time `gorm:"column:atualizado_em"`
}

func (participacaoModel) TableName() string {
	return "participacoes"
}

func (m participacaoModel) toDomain() domain.Participacao {
	return domain.Participacao{
		Escola:       m.Escola,
		Numero:       m.Numero,
		TotalVotaram: m.TotalVotaram,
		Encerrada:    m.Encerrada,
		AtualizadoEm: m.AtualizadoEm,
	}
}

// Garantir cria a participação zerada se ainda não existir e devolve a linha vigente.
func (r *ParticipacaoRepository) Garantir(ctx context.Context, p domain.Participacao) (domain.Participacao, error) {
	model := participacaoModel{
		Escola:       p.Escola,
		Numero:       p.Numero,
		AtualizadoEm: p.AtualizadoEm,
	}
	// Quem perde a corrida pela chave primária apenas lê a linha do vencedor.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "escola"}, {Name: "numero_mesa"}},
			DoNothing: true,
		}).
		Create(&model).Error; err != nil {
		return domain.Participacao{}, fmt.Errorf("gorm participacoes: garantir %s: %w", p.Mesa(), err)
	}
	return r.Obter(ctx, p.Mesa())
}

func (r *ParticipacaoRepository) Incrementar(ctx context.Context, mesa domain.Mesa, delta int64, em time.Time, registro *domain.RegistroVoto) (domain.Participacao, error) {
	if err := domain.ValidarDelta(delta); err != nil {
		return domain.Participacao{}, err
	}

	var atual participacaoModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A condição encerrada = false faz parte do próprio UPDATE: não existe janela entre checar e somar.
		// O teto em total_votaram impede que a soma estoure o bigint.
		res := tx.Model(&participacaoModel{}).
			Where("escola = ? AND numero_mesa = ? AND encerrada = ? AND total_votaram <= ?",
				mesa.Escola, mesa.Numero, false, math.MaxInt64-delta).
			Updates(map[string]any{
				"total_votaram": gorm.Expr("total_votaram + ?", delta),
				"atualizado_em": em,
			})
		if res.Error != nil {
			return fmt.Errorf("gorm participacoes: incrementar %s: %w", mesa, res.Error)
		}
		if res.RowsAffected == 0 {
			return motivoSemIncremento(tx, mesa, delta)
		}

		// A linha continua bloqueada por esta transação, então o total lido é o produzido por este UPDATE.
		if err := tx.First(&atual, "escola = ? AND numero_mesa = ?", mesa.Escola, mesa.Numero).Error; err != nil {
			return fmt.Errorf("gorm participacoes: reler %s: %w", mesa, err)
		}

		if registro == nil {
			return nil
		}

		model := fromDomainRegistro(*registro)
		model.TotalApos = atual.TotalVotaram
		create := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chave_idempotencia"}},
			DoNothing: true,
		}).Create(&model)
		if create.Error != nil {
			return fmt.Errorf("gorm registros: inserir %s: %w", registro.ChaveIdempotencia, create.Error)
		}
		if create.RowsAffected == 0 {
			// Rollback desfaz o incremento acima; quem chamou responde como reenvio.
			return domain.ErrRegistroDuplicado
		}
		return nil
	})
	if err != nil {
		return domain.Participacao{}, err
	}
	return atual.toDomain(), nil
}

func motivoSemIncremento(tx *gorm.DB, mesa domain.Mesa, delta int64) error {
	var model participacaoModel
	err := tx.Select("encerrada", "total_votaram").
		First(&model, "escola = ? AND numero_mesa = ?", mesa.Escola, mesa.Numero).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrParticipacaoNaoEncontrada
	case err != nil:
		return fmt.Errorf("gorm participacoes: verificar %s: %w", mesa, err)
	case model.Encerrada:
		return domain.ErrMesaEncerrada
	case model.TotalVotaram > math.MaxInt64-delta:
		return fmt.Errorf("%w: total de %s excederia o limite", domain.ErrDeltaInvalido, mesa)
	default:
		return fmt.Errorf("gorm participacoes: incremento sem efeito em %s", mesa)
	}
}

// Encerrar é idempotente: encerrar uma mesa já encerrada não é erro.
func (r *ParticipacaoRepository) Encerrar(ctx context.Context, mesa domain.Mesa, em time.Time) error {
	res := r.db.WithContext(ctx).Model(&participacaoModel{}).
		Where("escola = ? AND numero_mesa = ?", mesa.Escola, mesa.Numero).
		Updates(map[string]any{
			"encerrada":     true,
			"atualizado_em": em,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm participacoes: encerrar %s: %w", mesa, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := r.Obter(ctx, mesa); err != nil {
		return err
	}
	return nil
}

func (r *ParticipacaoRepository) Obter(ctx context.Context, mesa domain.Mesa) (domain.Participacao, error) {
	var model participacaoModel
	if err := r.db.WithContext(ctx).
		First(&model, "escola = ? AND numero_mesa = ?", mesa.Escola, mesa.Numero).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Participacao{}, domain.ErrParticipacaoNaoEncontrada
		}
		return domain.Participacao{}, fmt.Errorf("gorm participacoes: buscar %s: %w", mesa, err)
	}
	return model.toDomain(), nil
}

var _ domain.ParticipacaoRepository = (*ParticipacaoRepository)(nil)
