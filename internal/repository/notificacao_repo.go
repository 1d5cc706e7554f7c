package repository

import (
	"context"
	"time"

	"gestaogado/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificacaoRepository interface {
	Create(ctx context.Context, n *model.Notificacao) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notificacao, error)
	ListByDestinatario(ctx context.Context, userID uuid.UUID, lidas *bool) ([]model.Notificacao, error)
	ListByRemetente(ctx context.Context, userID uuid.UUID) ([]model.Notificacao, error)
	// ListRelated returns every message the user sent or received, oldest first.
	ListRelated(ctx context.Context, userID uuid.UUID) ([]model.Notificacao, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	CountNaoLidas(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	// ExistsSistemaDesde reports whether a system message about the lote was
	// already delivered to the user at or after since.
	ExistsSistemaDesde(ctx context.Context, destinatarioID, loteID uuid.UUID, since time.Time) (bool, error)
}

type notificacaoRepo struct{ db *gorm.DB }

func NewNotificacaoRepository(db *gorm.DB) NotificacaoRepository {
	return &notificacaoRepo{db: db}
}

func (r *notificacaoRepo) Create(ctx context.Context, n *model.Notificacao) error {
	return r.db.WithContext(ctx).Omit("Remetente", "Destinatario").Create(n).Error
}

func (r *notificacaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Notificacao, error) {
	var n model.Notificacao
	err := r.db.WithContext(ctx).
		Preload("Remetente").Preload("Destinatario").
		First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificacaoRepo) ListByDestinatario(ctx context.Context, userID uuid.UUID, lidas *bool) ([]model.Notificacao, error) {
	var out []model.Notificacao
	q := r.db.WithContext(ctx).Preload("Remetente").Where("destinatario_id = ?", userID)
	if lidas != nil {
		q = q.Where("lida = ?", *lidas)
	}
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *notificacaoRepo) ListByRemetente(ctx context.Context, userID uuid.UUID) ([]model.Notificacao, error) {
	var out []model.Notificacao
	err := r.db.WithContext(ctx).Preload("Destinatario").
		Where("remetente_id = ?", userID).
		Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *notificacaoRepo) ListRelated(ctx context.Context, userID uuid.UUID) ([]model.Notificacao, error) {
	var out []model.Notificacao
	err := r.db.WithContext(ctx).Preload("Remetente").Preload("Destinatario").
		Where("remetente_id = ? OR destinatario_id = ?", userID, userID).
		Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *notificacaoRepo) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notificacao{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"lida": true, "lida_em": at}).Error
}

func (r *notificacaoRepo) CountNaoLidas(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notificacao{}).
		Where("destinatario_id = ? AND lida = false", userID).
		Count(&n).Error
	return n, err
}

func (r *notificacaoRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&model.Notificacao{}, "id IN ?", ids).Error
}

func (r *notificacaoRepo) ExistsSistemaDesde(ctx context.Context, destinatarioID, loteID uuid.UUID, since time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notificacao{}).
		Where("remetente_id IS NULL AND destinatario_id = ? AND lote_id = ? AND created_at >= ?", destinatarioID, loteID, since).
		Count(&n).Error
	return n > 0, err
}
