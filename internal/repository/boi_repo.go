package repository

import (
	"context"

	"gestaogado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoiRepository interface {
	Create(ctx context.Context, tx *gorm.DB, b *model.Boi) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Boi, error)
	ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.Boi, error)
	Update(ctx context.Context, tx *gorm.DB, b *model.Boi) error
	Delete(ctx context.Context, id uuid.UUID) error
	// LockByID loads the animal row with FOR UPDATE so weight recomputes serialize.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Boi, error)
	// MarcarVendidos turns the ativo and doente animals of the lote into vendido,
	// remembering the previous status.
	MarcarVendidos(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) error
	// RestaurarVendidos puts the vendido animals of the lote back to the status
	// they had before the sale.
	RestaurarVendidos(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) error
	DB() *gorm.DB
}

type boiRepo struct{ db *gorm.DB }

func NewBoiRepository(db *gorm.DB) BoiRepository { return &boiRepo{db: db} }

func (r *boiRepo) DB() *gorm.DB { return r.db }

func (r *boiRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Boi) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Lote", "Pesos").Create(b).Error
}

func (r *boiRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Boi, error) {
	var b model.Boi
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *boiRepo) ListByLote(ctx context.Context, loteID uuid.UUID) ([]model.Boi, error) {
	var bois []model.Boi
	err := r.db.WithContext(ctx).Where("lote_id = ?", loteID).Order("created_at ASC").Find(&bois).Error
	return bois, err
}

func (r *boiRepo) Update(ctx context.Context, tx *gorm.DB, b *model.Boi) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Lote", "Pesos").Save(b).Error
}

func (r *boiRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Boi{}, "id = ?", id).Error
}

func (r *boiRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Boi, error) {
	var b model.Boi
	err := forUpdate(conn(r.db, tx).WithContext(ctx)).First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *boiRepo) MarcarVendidos(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Model(&model.Boi{}).
		Where("lote_id = ? AND status IN ?", loteID, []string{model.BoiAtivo, model.BoiDoente}).
		Updates(map[string]any{
			"status_antes_venda": gorm.Expr("status"),
			"status":             model.BoiVendido,
		}).Error
}

func (r *boiRepo) RestaurarVendidos(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) error {
	return conn(r.db, tx).WithContext(ctx).Model(&model.Boi{}).
		Where("lote_id = ? AND status = ?", loteID, model.BoiVendido).
		Updates(map[string]any{
			"status":             gorm.Expr("COALESCE(status_antes_venda, ?)", model.BoiAtivo),
			"status_antes_venda": nil,
		}).Error
}
