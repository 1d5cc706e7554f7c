package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado values for Venda.Estado.
const (
	VendaAtiva     = "ativa"
	VendaCancelada = "cancelada"
)

// Venda records the sale of a whole lote. Only one venda per lote may be ativa;
// cancellations keep the row with estado "cancelada".
type Venda struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	DataVenda  time.Time       `gorm:"type:date;not null"`
	Valor      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'ativa'"`
	Observacao *string
	PDFPath    *string `gorm:"column:pdf_path"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Lote *Lote `gorm:"foreignKey:LoteID"`
}
