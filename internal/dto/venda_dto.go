package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VendaFilter is bound from the query string of GET vendas.
type VendaFilter struct {
	Inicio string `form:"inicio"` // YYYY-MM-DD, inclusive
	Fim    string `form:"fim"`    // YYYY-MM-DD, inclusive
	LoteID string `form:"lote_id" validate:"omitempty,uuid"`
	Estado string `form:"estado"  validate:"omitempty,oneof=ativa cancelada todas"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarVendaRequest struct {
	LoteID     string          `json:"lote_id"    validate:"required,uuid"`
	DataVenda  string          `json:"data_venda" validate:"required"`
	Valor      decimal.Decimal `json:"valor"      validate:"required,gt=0"`
	Observacao *string         `json:"observacao"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VendaResponse struct {
	ID               string          `json:"id"`
	LoteID           string          `json:"lote_id"`
	CodigoLote       string          `json:"codigo_lote"`
	DataVenda        string          `json:"data_venda"`
	Valor            decimal.Decimal `json:"valor"`
	Estado           string          `json:"estado"`
	Observacao       *string         `json:"observacao"`
	Cabecas          int             `json:"cabecas"`
	Custo            decimal.Decimal `json:"custo"`
	GastoAlimentacao decimal.Decimal `json:"gasto_alimentacao"`
	Lucro            decimal.Decimal `json:"lucro"`
	Margem           decimal.Decimal `json:"margem"`
	PDFDisponivel    bool            `json:"pdf_disponivel"`
	CreatedAt        string          `json:"created_at"`
}
