package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PesoHistorico is one weighing of an animal. LoteID is denormalized so the
// lot weight curve can be read without joining bois.
type PesoHistorico struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BoiID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LoteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Peso        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DataPesagem time.Time       `gorm:"not null"`
	CreatedAt   time.Time
}

func (PesoHistorico) TableName() string { return "pesos_historico" }
