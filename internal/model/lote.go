package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lote is a batch of cattle bought together.
// A lote is considered sold while DataVenda is set; there is no separate state column.
type Lote struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo           string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	DataChegada      time.Time       `gorm:"type:date;not null"`
	Custo            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	GastoAlimentacao decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Vacinado         bool            `gorm:"not null;default:false"`
	DataVacinacao    *time.Time      `gorm:"type:date"`
	DataVenda        *time.Time      `gorm:"type:date;index"`
	Observacao       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Bois   []Boi   `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
	Vendas []Venda `gorm:"foreignKey:LoteID;constraint:OnDelete:CASCADE"`
}

// Vendido reports whether the lote has an active sale.
func (l *Lote) Vendido() bool { return l.DataVenda != nil }
