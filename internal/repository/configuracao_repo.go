package repository

import (
	"context"

	"gestaogado/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfiguracaoRepository interface {
	List(ctx context.Context) ([]model.Configuracao, error)
	Get(ctx context.Context, chave string) (*model.Configuracao, error)
	Upsert(ctx context.Context, c *model.Configuracao) error
}

type configuracaoRepo struct{ db *gorm.DB }

func NewConfiguracaoRepository(db *gorm.DB) ConfiguracaoRepository {
	return &configuracaoRepo{db: db}
}

func (r *configuracaoRepo) List(ctx context.Context) ([]model.Configuracao, error) {
	var out []model.Configuracao
	err := r.db.WithContext(ctx).Order("chave ASC").Find(&out).Error
	return out, err
}

func (r *configuracaoRepo) Get(ctx context.Context, chave string) (*model.Configuracao, error) {
	var c model.Configuracao
	err := r.db.WithContext(ctx).First(&c, "chave = ?", chave).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *configuracaoRepo) Upsert(ctx context.Context, c *model.Configuracao) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
	}).Create(c).Error
}
