package repository

import (
	"context"

	"gestaogado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoteQuery narrows List; zero values mean "no filter".
type LoteQuery struct {
	Vendido *bool
	Busca   string
}

type LoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, l *model.Lote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Lote, error)
	List(ctx context.Context, q LoteQuery) ([]model.Lote, error)
	Update(ctx context.Context, tx *gorm.DB, l *model.Lote) error
	Delete(ctx context.Context, id uuid.UUID) error
	// LockByID loads the lote row with FOR UPDATE; tx must be a live transaction.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lote, error)
	DB() *gorm.DB
}

type loteRepo struct{ db *gorm.DB }

func NewLoteRepository(db *gorm.DB) LoteRepository { return &loteRepo{db: db} }

func (r *loteRepo) DB() *gorm.DB { return r.db }

func (r *loteRepo) Create(ctx context.Context, tx *gorm.DB, l *model.Lote) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Bois", "Vendas").Create(l).Error
}

func (r *loteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lote, error) {
	var l model.Lote
	err := r.db.WithContext(ctx).Preload("Bois").First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *loteRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Lote, error) {
	var l model.Lote
	err := r.db.WithContext(ctx).Where("lower(codigo) = lower(?)", codigo).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *loteRepo) List(ctx context.Context, q LoteQuery) ([]model.Lote, error) {
	var lotes []model.Lote
	db := r.db.WithContext(ctx).Preload("Bois")
	if q.Vendido != nil {
		if *q.Vendido {
			db = db.Where("data_venda IS NOT NULL")
		} else {
			db = db.Where("data_venda IS NULL")
		}
	}
	if q.Busca != "" {
		db = db.Where("codigo ILIKE ?", "%"+q.Busca+"%")
	}
	err := db.Order("data_chegada DESC, codigo ASC").Find(&lotes).Error
	return lotes, err
}

func (r *loteRepo) Update(ctx context.Context, tx *gorm.DB, l *model.Lote) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Bois", "Vendas").Save(l).Error
}

func (r *loteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Lote{}, "id = ?", id).Error
}

func (r *loteRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lote, error) {
	var l model.Lote
	err := forUpdate(conn(r.db, tx).WithContext(ctx)).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}
