package dto

import "github.com/shopspring/decimal"

type RegistrarPesoRequest struct {
	Peso decimal.Decimal `json:"peso" validate:"required,gt=0"`
	// DataPesagem accepts YYYY-MM-DD or RFC 3339; empty means now.
	DataPesagem string `json:"data_pesagem"`
}

type AtualizarPesoRequest struct {
	Peso        *decimal.Decimal `json:"peso"`
	DataPesagem *string          `json:"data_pesagem"`
}

type PesoResponse struct {
	ID          string          `json:"id"`
	BoiID       string          `json:"boi_id"`
	LoteID      string          `json:"lote_id"`
	Peso        decimal.Decimal `json:"peso"`
	DataPesagem string          `json:"data_pesagem"`
	CreatedAt   string          `json:"created_at"`
}

// PesagemResponse is returned after a history change: the record touched and
// the animal's recomputed current weight.
type PesagemResponse struct {
	Registro  *PesoResponse   `json:"registro,omitempty"`
	BoiID     string          `json:"boi_id"`
	PesoAtual decimal.Decimal `json:"peso_atual"`
}
