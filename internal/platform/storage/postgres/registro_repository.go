package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/participacao-mesas/internal/domain"
)

const (
	historicoLimitePadrao = 20
	historicoLimiteMaximo = 100
)

// RegistroRepository consulta a trilha de auditoria; a escrita acontece junto do incremento.
type RegistroRepository struct {
	db *gorm.DB
}

func NewRegistroRepository(db *gorm.DB) *RegistroRepository {
	return &RegistroRepository{db: db}
}

type registroModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	SessaoID          string    `gorm:"column:sessao_id"`
	Escola            string    `gorm:"column:escola"`
	Numero            string    `gorm:"column:numero_mesa"`
	Quantidade        int64     `gorm:"column:quantidade"`
	ChaveIdempotencia string    `gorm:"column:chave_idempotencia"`
	Impressao         string    `gorm:"column:impressao"`
	TotalApos         int64     `gorm:"column:total_apos"`
	RegistradoEm      time.Time `gorm:"column:registrado_em"`
}

func (registroModel) TableName() string {
	return "registros_votos"
}

func fromDomainRegistro(r domain.RegistroVoto) registroModel {
	return registroModel{
		ID:                string(r.ID),
		SessaoID:          string(r.SessaoID),
		Escola:            r.Escola,
		Numero:            r.Numero,
		Quantidade:        r.Quantidade,
		ChaveIdempotencia: r.ChaveIdempotencia,
		Impressao:         r.Impressao,
		TotalApos:         r.TotalApos,
		RegistradoEm:      r.RegistradoEm,
	}
}

func (m registroModel) toDomain() domain.RegistroVoto {
	return domain.RegistroVoto{
		ID:                domain.RegistroID(m.ID),
		SessaoID:          domain.SessaoID(m.SessaoID),
		Escola:            m.Escola,
		Numero:            m.Numero,
		Quantidade:        m.Quantidade,
		ChaveIdempotencia: m.ChaveIdempotencia,
		Impressao:         m.Impressao,
		TotalApos:         m.TotalApos,
		RegistradoEm:      m.RegistradoEm,
	}
}

func (r *RegistroRepository) BuscarPorChave(ctx context.Context, chave string) (domain.RegistroVoto, error) {
	var model registroModel
	if err := r.db.WithContext(ctx).
		First(&model, "chave_idempotencia = ?", chave).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RegistroVoto{}, domain.ErrNotFound
		}
		return domain.RegistroVoto{}, fmt.Errorf("gorm registros: buscar chave: %w", err)
	}
	return model.toDomain(), nil
}

// ListarPorSessao devolve os registros mais recentes primeiro; ULIDs desempatam o mesmo instante.
func (r *RegistroRepository) ListarPorSessao(ctx context.Context, sessaoID domain.SessaoID, limite int) ([]domain.RegistroVoto, error) {
	if limite <= 0 {
		limite = historicoLimitePadrao
	}
	if limite > historicoLimiteMaximo {
		limite = historicoLimiteMaximo
	}

	var models []registroModel
	if err := r.db.WithContext(ctx).
		Where("sessao_id = ?", sessaoID).
		Order("registrado_em DESC").
		Order("id DESC").
		Limit(limite).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm registros: listar sessao %s: %w", sessaoID, err)
	}

	registros := make([]domain.RegistroVoto, len(models))
	for i, model := range models {
		registros[i] = model.toDomain()
	}
	return registros, nil
}

var _ domain.RegistroRepository = (*RegistroRepository)(nil)
