package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"

	"github.com/shopspring/decimal"
)

// RelatorioService aggregates sales and herd figures in process. Volumes are a
// single farm's bookkeeping, so every report loads the rows it needs and
// groups them in Go; results are cached in Redis when available.
type RelatorioService interface {
	VendasAgrupadas(ctx context.Context, filter dto.RelatorioVendasFilter) (*dto.RelatorioVendasResponse, error)
	LucroPorLote(ctx context.Context) ([]dto.LucroLoteItem, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type relatorioService struct {
	vendaRepo  repository.VendaRepository
	loteRepo   repository.LoteRepository
	configRepo repository.ConfiguracaoRepository
	cache      *infra.Cache
	now        func() time.Time
}

func NewRelatorioService(
	vendaRepo repository.VendaRepository,
	loteRepo repository.LoteRepository,
	configRepo repository.ConfiguracaoRepository,
	cache *infra.Cache,
) RelatorioService {
	return &relatorioService{
		vendaRepo:  vendaRepo,
		loteRepo:   loteRepo,
		configRepo: configRepo,
		cache:      cache,
		now:        time.Now,
	}
}

func (s *relatorioService) VendasAgrupadas(ctx context.Context, filter dto.RelatorioVendasFilter) (*dto.RelatorioVendasResponse, error) {
	agrupar := filter.Agrupar
	if agrupar == "" {
		agrupar = dto.AgruparMes
	}
	q, err := vendaQuery(filter.Inicio, filter.Fim)
	if err != nil {
		return nil, err
	}
	q.Estado = model.VendaAtiva

	key := fmt.Sprintf("%svendas:%s:%s:%s", cachePrefixRelatorio, agrupar, filter.Inicio, filter.Fim)
	var cached dto.RelatorioVendasResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	vendas, err := s.vendaRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	grupos, total := agruparVendas(vendas, agrupar)
	resp := &dto.RelatorioVendasResponse{
		Agrupamento: agrupar,
		Inicio:      formatDataPtr(q.Inicio),
		Fim:         formatDataPtr(q.Fim),
		Grupos:      grupos,
		Total:       total,
	}
	s.cache.Set(ctx, key, resp)
	return resp, nil
}

func (s *relatorioService) LucroPorLote(ctx context.Context) ([]dto.LucroLoteItem, error) {
	key := cachePrefixRelatorio + "lucro"
	var cached []dto.LucroLoteItem
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	vendas, err := s.vendaRepo.List(ctx, repository.VendaQuery{Estado: model.VendaAtiva})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LucroLoteItem, 0, len(vendas))
	for i := range vendas {
		v := &vendas[i]
		if v.Lote == nil {
			continue
		}
		a := agregarBois(v.Lote.Bois)
		lucro, margem := calcularLucro(v.Valor, v.Lote.Custo, v.Lote.GastoAlimentacao)
		out = append(out, dto.LucroLoteItem{
			LoteID:           v.LoteID.String(),
			CodigoLote:       v.Lote.Codigo,
			DataChegada:      formatData(v.Lote.DataChegada),
			DataVenda:        formatData(v.DataVenda),
			DiasNoPasto:      diasEntre(v.Lote.DataChegada, v.DataVenda),
			Cabecas:          a.Quantidade,
			PesoTotal:        a.PesoTotal,
			Custo:            v.Lote.Custo,
			GastoAlimentacao: v.Lote.GastoAlimentacao,
			Valor:            v.Valor,
			Lucro:            lucro,
			Margem:           margem,
		})
	}
	s.cache.Set(ctx, key, out)
	return out, nil
}

func (s *relatorioService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	key := cachePrefixRelatorio + "dashboard"
	var cached dto.DashboardResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	lotes, err := s.loteRepo.List(ctx, repository.LoteQuery{})
	if err != nil {
		return nil, err
	}
	vendas, err := s.vendaRepo.List(ctx, repository.VendaQuery{Estado: model.VendaAtiva})
	if err != nil {
		return nil, err
	}
	resp := montarDashboard(lotes, vendas, pesoMedioVenda(ctx, s.configRepo), s.now())
	s.cache.Set(ctx, key, resp)
	return resp, nil
}

// montarDashboard computes the herd figures over unsold lotes and the money
// figures over active sales.
func montarDashboard(lotes []model.Lote, vendas []model.Venda, limiar decimal.Decimal, agora time.Time) *dto.DashboardResponse {
	d := &dto.DashboardResponse{
		PesoMedioGeral: decimal.Zero,
		LotesProntos:   []string{},
		PesoMedioVenda: limiar,
		GeradoEm:       formatInstante(agora),
	}
	pesoTotal := decimal.Zero
	for i := range lotes {
		l := &lotes[i]
		if l.Vendido() {
			d.LotesVendidos++
			continue
		}
		d.LotesAtivos++
		if !l.Vacinado {
			d.LotesSemVacina++
		}
		a := agregarBois(l.Bois)
		d.TotalBois += a.Quantidade
		pesoTotal = pesoTotal.Add(a.PesoTotal)
		for _, b := range l.Bois {
			if b.Alerta != nil && b.Status != model.BoiMorto {
				d.BoisComAlerta++
			}
		}
		if resumoLote(l, limiar).ProntoParaVenda {
			d.LotesProntos = append(d.LotesProntos, l.Codigo)
		}
	}
	if d.TotalBois > 0 {
		d.PesoMedioGeral = pesoTotal.Div(decimal.NewFromInt(int64(d.TotalBois))).Round(2)
	}
	sort.Strings(d.LotesProntos)

	_, total := agruparVendas(vendas, dto.AgruparLote)
	d.ReceitaTotal = total.Receita
	d.CustoTotal = total.Custo
	d.LucroTotal = total.Lucro
	d.MargemMedia = total.Margem
	return d
}

// agruparVendas buckets sales by the requested key and returns the groups
// ordered by key plus the grand total.
func agruparVendas(vendas []model.Venda, agrupar string) ([]dto.GrupoVendas, dto.GrupoVendas) {
	acc := map[string]*dto.GrupoVendas{}
	total := novoGrupo("total")
	for i := range vendas {
		v := &vendas[i]
		k := chaveGrupo(v, agrupar)
		g, ok := acc[k]
		if !ok {
			g = novoGrupo(k)
			acc[k] = g
		}
		somarVenda(g, v)
		somarVenda(total, v)
	}

	grupos := make([]dto.GrupoVendas, 0, len(acc))
	for _, g := range acc {
		fecharGrupo(g)
		grupos = append(grupos, *g)
	}
	sort.Slice(grupos, func(i, j int) bool { return grupos[i].Chave < grupos[j].Chave })
	fecharGrupo(total)
	return grupos, *total
}

func novoGrupo(chave string) *dto.GrupoVendas {
	return &dto.GrupoVendas{
		Chave:   chave,
		Receita: decimal.Zero,
		Custo:   decimal.Zero,
		Lucro:   decimal.Zero,
		Margem:  decimal.Zero,
	}
}

func somarVenda(g *dto.GrupoVendas, v *model.Venda) {
	g.QuantidadeVendas++
	g.Receita = g.Receita.Add(v.Valor)
	if v.Lote != nil {
		g.Custo = g.Custo.Add(v.Lote.Custo).Add(v.Lote.GastoAlimentacao)
		g.Cabecas += agregarBois(v.Lote.Bois).Quantidade
	}
}

func fecharGrupo(g *dto.GrupoVendas) {
	g.Lucro, g.Margem = calcularLucro(g.Receita, g.Custo, decimal.Zero)
}

// chaveGrupo: dia "2006-01-02", semana ISO "2006-W05", mes "2006-01", lote code.
func chaveGrupo(v *model.Venda, agrupar string) string {
	d := v.DataVenda.UTC()
	switch agrupar {
	case dto.AgruparDia:
		return d.Format(dto.DataLayout)
	case dto.AgruparSemana:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case dto.AgruparLote:
		if v.Lote != nil {
			return v.Lote.Codigo
		}
		return v.LoteID.String()
	default:
		return d.Format("2006-01")
	}
}

func diasEntre(de, ate time.Time) int {
	return int(ate.UTC().Sub(de.UTC()).Hours() / 24)
}
