package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarBoiRequest struct {
	LoteID      string          `json:"lote_id"      validate:"required,uuid"`
	Brinco      *string         `json:"brinco"       validate:"omitempty,max=40"`
	Peso        decimal.Decimal `json:"peso"         validate:"required,gt=0"`
	DataPesagem string          `json:"data_pesagem"`
}

type AtualizarBoiRequest struct {
	LoteID *string `json:"lote_id" validate:"omitempty,uuid"`
	Brinco *string `json:"brinco"  validate:"omitempty,max=40"`
	Status *string `json:"status"  validate:"omitempty,oneof=ativo doente morto"`
	Alerta *string `json:"alerta"  validate:"omitempty,max=500"`
}

// AlertaRequest sets the alert note; an empty or missing value clears it.
type AlertaRequest struct {
	Alerta *string `json:"alerta" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BoiResponse struct {
	ID        string          `json:"id"`
	LoteID    string          `json:"lote_id"`
	Brinco    *string         `json:"brinco"`
	Peso      decimal.Decimal `json:"peso"`
	Status    string          `json:"status"`
	Alerta    *string         `json:"alerta"`
	CreatedAt string          `json:"created_at"`
}
