package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

// EleitoradoRepository lê o cadastro de eleitores por mesa; só a importação escreve.
type EleitoradoRepository struct {
	db *gorm.DB
}

func NewEleitoradoRepository(db *gorm.DB) *EleitoradoRepository {
	return &EleitoradoRepository{db: db}
}

type eleitoradoModel struct {
	Escola    string    `gorm:"column:escola;primaryKey"`
	Numero    string    `gorm:"column:numero_mesa;primaryKey"`
	Eleitores int64     `gorm:"column:eleitores_registrados"`
	CriadoEm  time.Time `gorm:"column:criado_em"`
}

func (eleitoradoModel) TableName() string {
	return "eleitorados"
}

func (m eleitoradoModel) toDomain() domain.Eleitorado {
	return domain.Eleitorado{
		Escola:    m.Escola,
		Numero:    m.Numero,
		Eleitores: m.Eleitores,
		CriadoEm:  m.CriadoEm,
	}
}

func (r *EleitoradoRepository) Obter(ctx context.Context, mesa domain.Mesa) (domain.Eleitorado, error) {
	var model eleitoradoModel
	if err := r.db.WithContext(ctx).
		First(&model, "escola = ? AND numero_mesa = ?", mesa.Escola, mesa.Numero).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Eleitorado{}, domain.ErrNotFound
		}
		return domain.Eleitorado{}, fmt.Errorf("gorm eleitorados: buscar %s: %w", mesa, err)
	}
	return model.toDomain(), nil
}

// Importar grava ou corrige o eleitorado das mesas informadas em lote.
func (r *EleitoradoRepository) Importar(ctx context.Context, eleitorados []domain.Eleitorado, em time.Time) (int64, error) {
	if len(eleitorados) == 0 {
		return 0, nil
	}

	models := make([]eleitoradoModel, len(eleitorados))
	for i, e := range eleitorados {
		if e.Eleitores < 0 {
			return 0, fmt.Errorf("gorm eleitorados: importar %s: eleitores negativos", e.Mesa())
		}
		models[i] = eleitoradoModel{
			Escola:    e.Escola,
			Numero:    e.Numero,
			Eleitores: e.Eleitores,
			CriadoEm:  em,
		}
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "escola"}, {Name: "numero_mesa"}},
			DoUpdates: clause.AssignmentColumns([]string{"eleitores_registrados"}),
		}).
		CreateInBatches(&models, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("gorm eleitorados: importar: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var _ domain.EleitoradoRepository = (*EleitoradoRepository)(nil)
