package repository

import (
	"context"
	"time"

	"gestaogado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendaQuery filters List. Inicio/Fim are inclusive dates; Estado empty means any.
type VendaQuery struct {
	Inicio *time.Time
	Fim    *time.Time
	LoteID *uuid.UUID
	Estado string
}

type VendaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error)
	// FindAtivaByLote returns gorm.ErrRecordNotFound when the lote has no active sale.
	FindAtivaByLote(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) (*model.Venda, error)
	Update(ctx context.Context, tx *gorm.DB, v *model.Venda) error
	List(ctx context.Context, q VendaQuery) ([]model.Venda, error)
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
	DB() *gorm.DB
}

type vendaRepo struct{ db *gorm.DB }

func NewVendaRepository(db *gorm.DB) VendaRepository { return &vendaRepo{db: db} }

func (r *vendaRepo) DB() *gorm.DB { return r.db }

func (r *vendaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Lote").Create(v).Error
}

func (r *vendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := r.db.WithContext(ctx).Preload("Lote.Bois").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendaRepo) FindAtivaByLote(ctx context.Context, tx *gorm.DB, loteID uuid.UUID) (*model.Venda, error) {
	var v model.Venda
	err := conn(r.db, tx).WithContext(ctx).
		Where("lote_id = ? AND estado = ?", loteID, model.VendaAtiva).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendaRepo) Update(ctx context.Context, tx *gorm.DB, v *model.Venda) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Lote").Save(v).Error
}

func (r *vendaRepo) List(ctx context.Context, q VendaQuery) ([]model.Venda, error) {
	var vendas []model.Venda
	db := r.db.WithContext(ctx).Preload("Lote.Bois")
	if q.Estado != "" {
		db = db.Where("estado = ?", q.Estado)
	}
	if q.Inicio != nil {
		db = db.Where("data_venda >= ?", *q.Inicio)
	}
	if q.Fim != nil {
		db = db.Where("data_venda <= ?", *q.Fim)
	}
	if q.LoteID != nil {
		db = db.Where("lote_id = ?", *q.LoteID)
	}
	err := db.Order("data_venda DESC, created_at DESC").Find(&vendas).Error
	return vendas, err
}

func (r *vendaRepo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Venda{}).Where("id = ?", id).Update("pdf_path", path).Error
}
