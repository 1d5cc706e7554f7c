package repository

import (
	"context"

	"gestaogado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PesoRepository stores the weight history. Records are plain rows; keeping
// Boi.Peso in sync is the service's job.
type PesoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.PesoHistorico) error
	// FindByID reads through tx when given, so callers holding the boi lock see
	// the row as of their transaction.
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PesoHistorico, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.PesoHistorico) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByBoi(ctx context.Context, tx *gorm.DB, boiID uuid.UUID) ([]model.PesoHistorico, error)
	ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.PesoHistorico, error)
	// MoveBoi rewrites the denormalized lote_id of every record of the animal.
	MoveBoi(ctx context.Context, tx *gorm.DB, boiID, loteID uuid.UUID) error
	DB() *gorm.DB
}

type pesoRepo struct{ db *gorm.DB }

func NewPesoRepository(db *gorm.DB) PesoRepository { return &pesoRepo{db: db} }

func (r *pesoRepo) DB() *gorm.DB { return r.db }

func (r *pesoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.PesoHistorico) error {
	return conn(r.db, tx).WithContext(ctx).Create(p).Error
}

func (r *pesoRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PesoHistorico, error) {
	var p model.PesoHistorico
	err := conn(r.db, tx).WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pesoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.PesoHistorico) error {
	return conn(r.db, tx).WithContext(ctx).Save(p).Error
}

func (r *pesoRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Delete(&model.PesoHistorico{}, "id = ?", id).Error
}

func (r *pesoRepo) ListByBoi(ctx context.Context, tx *gorm.DB, boiID uuid.UUID) ([]model.PesoHistorico, error) {
	var pesos []model.PesoHistorico
	err := conn(r.db, tx).WithContext(ctx).
		Where("boi_id = ?", boiID).
		Order("data_pesagem DESC, created_at DESC").
		Find(&pesos).Error
	return pesos, err
}

func (r *pesoRepo) ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.PesoHistorico, error) {
	var pesos []model.PesoHistorico
	err := r.db.WithContext(ctx).
		Where("lote_id = ?", loteID).
		Order("data_pesagem DESC, created_at DESC").
		Find(&pesos).Error
	return pesos, err
}

func (r *pesoRepo) MoveBoi(ctx context.Context, tx *gorm.DB, boiID, loteID uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Model(&model.PesoHistorico{}).
		Where("boi_id = ?", boiID).
		Update("lote_id", loteID).Error
}
