package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestaogado/internal/dto"
	"gestaogado/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (m *memStore) seedVenda(l *model.Lote, dia, valor, estado string) *model.Venda {
	v := &model.Venda{ID: uuid.New(), LoteID: l.ID, DataVenda: data(dia), Valor: dec(valor), Estado: estado, CreatedAt: m.tick()}
	m.vendas[v.ID] = v
	if estado == model.VendaAtiva {
		dv := v.DataVenda
		l.DataVenda = &dv
	}
	return v
}

func newRelatorioSvc(m *memStore) *relatorioService {
	lotes, _, _, vendas, _, _, configs := m.repos()
	svc := NewRelatorioService(vendas, lotes, configs, nil).(*relatorioService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestChaveGrupo(t *testing.T) {
	lote := &model.Lote{Codigo: "L-07"}
	tests := []struct {
		dia, agrupar, want string
	}{
		{"2024-01-01", dto.AgruparSemana, "2024-W01"},
		{"2024-01-07", dto.AgruparSemana, "2024-W01"},
		{"2024-01-08", dto.AgruparSemana, "2024-W02"},
		{"2021-01-03", dto.AgruparSemana, "2020-W53"},
		{"2024-12-30", dto.AgruparSemana, "2025-W01"},
		{"2024-03-15", dto.AgruparDia, "2024-03-15"},
		{"2024-03-15", dto.AgruparMes, "2024-03"},
		{"2024-03-15", "", "2024-03"},
		{"2024-03-15", dto.AgruparLote, "L-07"},
	}
	for _, tt := range tests {
		t.Run(tt.agrupar+"/"+tt.dia, func(t *testing.T) {
			v := &model.Venda{DataVenda: data(tt.dia), Lote: lote}
			assert.Equal(t, tt.want, chaveGrupo(v, tt.agrupar))
		})
	}
}

func TestVendasAgrupadas_PorSemana(t *testing.T) {
	m := newMemStore()
	a := m.seedLote("A", "2023-12-01", "600", "100")
	m.seedBoi(a, "400", model.BoiVendido)
	b := m.seedLote("B", "2023-12-01", "800", "0")
	m.seedBoi(b, "450", model.BoiVendido)
	m.seedBoi(b, "470", model.BoiVendido)
	c := m.seedLote("C", "2023-12-01", "500", "0")
	m.seedBoi(c, "300", model.BoiAtivo)

	m.seedVenda(a, "2024-01-02", "1000", model.VendaAtiva)
	m.seedVenda(b, "2024-01-05", "1200", model.VendaAtiva)
	m.seedVenda(c, "2024-01-03", "9999", model.VendaCancelada)

	resp, err := newRelatorioSvc(m).VendasAgrupadas(context.Background(), dto.RelatorioVendasFilter{Agrupar: dto.AgruparSemana})
	require.NoError(t, err)

	assert.Equal(t, dto.AgruparSemana, resp.Agrupamento)
	require.Len(t, resp.Grupos, 1, "cancelled sales are ignored")
	g := resp.Grupos[0]
	assert.Equal(t, "2024-W01", g.Chave)
	assert.Equal(t, 2, g.QuantidadeVendas)
	assert.Equal(t, 3, g.Cabecas)
	assert.True(t, dec("2200").Equal(g.Receita))
	assert.True(t, dec("1500").Equal(g.Custo))
	assert.True(t, dec("700").Equal(g.Lucro))
	assert.True(t, dec("31.82").Equal(g.Margem), "margem %s", g.Margem)
	assert.True(t, g.Receita.Equal(resp.Total.Receita))
}

func TestVendasAgrupadas_PadraoMesComPeriodo(t *testing.T) {
	m := newMemStore()
	a := m.seedLote("A", "2023-12-01", "100", "0")
	b := m.seedLote("B", "2023-12-01", "100", "0")
	c := m.seedLote("C", "2023-12-01", "100", "0")
	m.seedVenda(a, "2024-01-20", "300", model.VendaAtiva)
	m.seedVenda(b, "2024-02-10", "400", model.VendaAtiva)
	m.seedVenda(c, "2024-03-05", "500", model.VendaAtiva)
	svc := newRelatorioSvc(m)

	resp, err := svc.VendasAgrupadas(context.Background(), dto.RelatorioVendasFilter{Inicio: "2024-01-01", Fim: "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, dto.AgruparMes, resp.Agrupamento)
	require.Len(t, resp.Grupos, 2)
	assert.Equal(t, "2024-01", resp.Grupos[0].Chave)
	assert.Equal(t, "2024-02", resp.Grupos[1].Chave)
	require.NotNil(t, resp.Inicio)
	assert.Equal(t, "2024-01-01", *resp.Inicio)
	assert.Equal(t, 2, resp.Total.QuantidadeVendas)

	_, err = svc.VendasAgrupadas(context.Background(), dto.RelatorioVendasFilter{Inicio: "01/01/2024"})
	assert.True(t, errors.Is(err, ErrDadosInvalidos))
}

func TestLucroPorLote(t *testing.T) {
	m := newMemStore()
	a := m.seedLote("A", "2024-01-01", "6000", "1500")
	m.seedBoi(a, "480", model.BoiVendido)
	m.seedBoi(a, "200", model.BoiMorto)
	m.seedVenda(a, "2024-01-31", "10000", model.VendaAtiva)

	itens, err := newRelatorioSvc(m).LucroPorLote(context.Background())
	require.NoError(t, err)
	require.Len(t, itens, 1)
	it := itens[0]
	assert.Equal(t, "A", it.CodigoLote)
	assert.Equal(t, 30, it.DiasNoPasto)
	assert.Equal(t, 1, it.Cabecas)
	assert.True(t, dec("480").Equal(it.PesoTotal))
	assert.True(t, dec("2500").Equal(it.Lucro))
	assert.True(t, dec("25").Equal(it.Margem))
}

func TestDashboard(t *testing.T) {
	m := newMemStore()
	alerta := "mancando"

	pronto := m.seedLote("P", "2024-01-01", "1000", "0")
	pronto.Vacinado = true
	m.seedBoi(pronto, "520", model.BoiAtivo)
	m.seedBoi(pronto, "500", model.BoiAtivo)

	magro := m.seedLote("M", "2024-02-01", "1000", "0")
	m.seedBoi(magro, "300", model.BoiAtivo)
	b := m.seedBoi(magro, "320", model.BoiDoente)
	b.Alerta = &alerta
	morto := m.seedBoi(magro, "100", model.BoiMorto)
	morto.Alerta = &alerta

	vendido := m.seedLote("V", "2023-10-01", "2000", "500")
	m.seedBoi(vendido, "510", model.BoiVendido)
	m.seedVenda(vendido, "2024-02-01", "3000", model.VendaAtiva)

	d, err := newRelatorioSvc(m).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, d.LotesAtivos)
	assert.Equal(t, 1, d.LotesVendidos)
	assert.Equal(t, 4, d.TotalBois)
	assert.True(t, dec("410").Equal(d.PesoMedioGeral), "peso medio %s", d.PesoMedioGeral)
	assert.Equal(t, 1, d.LotesSemVacina)
	assert.Equal(t, 1, d.BoisComAlerta)
	assert.Equal(t, []string{"P"}, d.LotesProntos)
	assert.True(t, PesoMedioVendaPadrao.Equal(d.PesoMedioVenda))
	assert.True(t, dec("3000").Equal(d.ReceitaTotal))
	assert.True(t, dec("500").Equal(d.LucroTotal))
	assert.Equal(t, "2024-06-01T12:00:00Z", d.GeradoEm)
}

func TestMontarDashboard_Vazio(t *testing.T) {
	d := montarDashboard(nil, nil, dec("450"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, d.TotalBois)
	assert.True(t, d.PesoMedioGeral.IsZero())
	assert.NotNil(t, d.LotesProntos)
	assert.True(t, d.MargemMedia.IsZero())
}
