package dto

import "github.com/shopspring/decimal"

// DataLayout is the wire format of date-only fields.
const DataLayout = "2006-01-02"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// NovoBoiRequest describes an animal created together with its lote.
type NovoBoiRequest struct {
	Brinco *string         `json:"brinco" validate:"omitempty,max=40"`
	Peso   decimal.Decimal `json:"peso"   validate:"required,gt=0"`
}

type CriarLoteRequest struct {
	Codigo           string           `json:"codigo"            validate:"required,min=1,max=40"`
	DataChegada      string           `json:"data_chegada"      validate:"required"`
	Custo            decimal.Decimal  `json:"custo"             validate:"min=0"`
	GastoAlimentacao decimal.Decimal  `json:"gasto_alimentacao" validate:"min=0"`
	Observacao       *string          `json:"observacao"`
	Bois             []NovoBoiRequest `json:"bois"              validate:"omitempty,dive"`
}

type AtualizarLoteRequest struct {
	Codigo           *string          `json:"codigo"            validate:"omitempty,min=1,max=40"`
	DataChegada      *string          `json:"data_chegada"`
	Custo            *decimal.Decimal `json:"custo"`
	GastoAlimentacao *decimal.Decimal `json:"gasto_alimentacao"`
	Observacao       *string          `json:"observacao"`
}

type VacinacaoRequest struct {
	// Data defaults to today when empty.
	Data string `json:"data"`
}

// LoteFilter is bound from the query string of GET lotes.
type LoteFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=vendido disponivel todos"`
	Busca  string `form:"busca"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoteResponse struct {
	ID               string          `json:"id"`
	Codigo           string          `json:"codigo"`
	DataChegada      string          `json:"data_chegada"`
	Custo            decimal.Decimal `json:"custo"`
	GastoAlimentacao decimal.Decimal `json:"gasto_alimentacao"`
	Vacinado         bool            `json:"vacinado"`
	DataVacinacao    *string         `json:"data_vacinacao"`
	DataVenda        *string         `json:"data_venda"`
	Vendido          bool            `json:"vendido"`
	Observacao       *string         `json:"observacao"`
	QuantidadeBois   int             `json:"quantidade_bois"`
	PesoTotal        decimal.Decimal `json:"peso_total"`
	PesoMedio        decimal.Decimal `json:"peso_medio"`
	ProntoParaVenda  bool            `json:"pronto_para_venda"`
	CreatedAt        string          `json:"created_at"`
}
