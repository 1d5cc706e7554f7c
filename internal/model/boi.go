package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status values for Boi.Status.
const (
	BoiAtivo   = "ativo"
	BoiDoente  = "doente"
	BoiMorto   = "morto"
	BoiVendido = "vendido"
)

// Boi is a single animal. Peso mirrors the latest PesoHistorico entry and is
// rewritten by the weight service after every history change.
// StatusAntesVenda holds the status a sale replaced, so a cancellation can
// restore it.
type Boi struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LoteID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Brinco           *string         `gorm:"type:varchar(40)"`
	Peso             decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Status           string          `gorm:"type:varchar(20);not null;default:'ativo'"`
	Alerta           *string
	StatusAntesVenda *string `gorm:"type:varchar(20)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Lote  *Lote           `gorm:"foreignKey:LoteID"`
	Pesos []PesoHistorico `gorm:"foreignKey:BoiID;constraint:OnDelete:CASCADE"`
}

func (Boi) TableName() string { return "bois" }
