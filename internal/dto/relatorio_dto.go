package dto

import "github.com/shopspring/decimal"

// Grouping keys accepted by the sales report.
const (
	AgruparDia    = "dia"
	AgruparSemana = "semana"
	AgruparMes    = "mes"
	AgruparLote   = "lote"
)

// RelatorioVendasFilter is bound from the query string of GET relatorios/vendas.
type RelatorioVendasFilter struct {
	Agrupar string `form:"agrupar" validate:"omitempty,oneof=dia semana mes lote"`
	Inicio  string `form:"inicio"`
	Fim     string `form:"fim"`
}

// GrupoVendas is one bucket of the grouped sales report.
type GrupoVendas struct {
	Chave            string          `json:"chave"`
	QuantidadeVendas int             `json:"quantidade_vendas"`
	Cabecas          int             `json:"cabecas"`
	Receita          decimal.Decimal `json:"receita"`
	Custo            decimal.Decimal `json:"custo"`
	Lucro            decimal.Decimal `json:"lucro"`
	Margem           decimal.Decimal `json:"margem"`
}

type RelatorioVendasResponse struct {
	Agrupamento string        `json:"agrupamento"`
	Inicio      *string       `json:"inicio"`
	Fim         *string       `json:"fim"`
	Grupos      []GrupoVendas `json:"grupos"`
	Total       GrupoVendas   `json:"total"`
}

// LucroLoteItem is one sold lote in the profit report.
type LucroLoteItem struct {
	LoteID           string          `json:"lote_id"`
	CodigoLote       string          `json:"codigo_lote"`
	DataChegada      string          `json:"data_chegada"`
	DataVenda        string          `json:"data_venda"`
	DiasNoPasto      int             `json:"dias_no_pasto"`
	Cabecas          int             `json:"cabecas"`
	PesoTotal        decimal.Decimal `json:"peso_total"`
	Custo            decimal.Decimal `json:"custo"`
	GastoAlimentacao decimal.Decimal `json:"gasto_alimentacao"`
	Valor            decimal.Decimal `json:"valor"`
	Lucro            decimal.Decimal `json:"lucro"`
	Margem           decimal.Decimal `json:"margem"`
}

type DashboardResponse struct {
	LotesAtivos    int             `json:"lotes_ativos"`
	LotesVendidos  int             `json:"lotes_vendidos"`
	TotalBois      int             `json:"total_bois"`
	PesoMedioGeral decimal.Decimal `json:"peso_medio_geral"`
	ReceitaTotal   decimal.Decimal `json:"receita_total"`
	CustoTotal     decimal.Decimal `json:"custo_total"`
	LucroTotal     decimal.Decimal `json:"lucro_total"`
	MargemMedia    decimal.Decimal `json:"margem_media"`
	LotesSemVacina int             `json:"lotes_sem_vacina"`
	BoisComAlerta  int             `json:"bois_com_alerta"`
	LotesProntos   []string        `json:"lotes_prontos"` // codes of unsold lotes at or above peso_medio_venda
	PesoMedioVenda decimal.Decimal `json:"peso_medio_venda"`
	GeradoEm       string          `json:"gerado_em"`
}
