package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gestaogado/internal/dto"
	"gestaogado/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoteSvc(m *memStore) LoteService {
	lotes, bois, pesos, vendas, _, _, configs := m.repos()
	return NewLoteService(lotes, bois, pesos, vendas, configs, nil)
}

func TestCriarLote_AgregaBoisEPrimeiraPesagem(t *testing.T) {
	m := newMemStore()
	svc := newLoteSvc(m)

	resp, err := svc.Criar(context.Background(), dto.CriarLoteRequest{
		Codigo:           " L-01 ",
		DataChegada:      "2024-02-10",
		Custo:            dec("30000"),
		GastoAlimentacao: dec("4500"),
		Bois: []dto.NovoBoiRequest{
			{Peso: dec("300")},
			{Peso: dec("350")},
			{Peso: dec("400")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "L-01", resp.Codigo)
	assert.Equal(t, "2024-02-10", resp.DataChegada)
	assert.Equal(t, 3, resp.QuantidadeBois)
	assert.True(t, dec("1050").Equal(resp.PesoTotal))
	assert.True(t, dec("350").Equal(resp.PesoMedio))
	assert.False(t, resp.Vendido)
	assert.False(t, resp.ProntoParaVenda)

	require.Len(t, m.bois, 3)
	require.Len(t, m.pesos, 3)
	for _, p := range m.pesos {
		assert.Equal(t, data("2024-02-10"), p.DataPesagem)
		assert.Equal(t, resp.ID, p.LoteID.String())
	}
}

func TestCriarLote_SemBois(t *testing.T) {
	m := newMemStore()
	resp, err := newLoteSvc(m).Criar(context.Background(), dto.CriarLoteRequest{Codigo: "L-02", DataChegada: "2024-02-10"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.QuantidadeBois)
	assert.True(t, resp.PesoMedio.IsZero())
	assert.False(t, resp.ProntoParaVenda)
}

func TestCriarLote_CodigoDuplicado(t *testing.T) {
	m := newMemStore()
	m.seedLote("L-01", "2024-01-05", "0", "0")

	_, err := newLoteSvc(m).Criar(context.Background(), dto.CriarLoteRequest{Codigo: "l-01", DataChegada: "2024-02-10"})
	assert.True(t, errors.Is(err, ErrConflito))
}

func TestCriarLote_DataInvalida(t *testing.T) {
	_, err := newLoteSvc(newMemStore()).Criar(context.Background(), dto.CriarLoteRequest{Codigo: "X", DataChegada: "10/02/2024"})
	assert.True(t, errors.Is(err, ErrDadosInvalidos))
}

func TestResumoLote(t *testing.T) {
	limiar := decimal.NewFromInt(450)
	tests := []struct {
		name       string
		bois       []model.Boi
		vendido    bool
		quantidade int
		medio      string
		pronto     bool
	}{
		{
			name:       "mortos ficam fora da contagem",
			bois:       []model.Boi{{Peso: dec("500"), Status: model.BoiAtivo}, {Peso: dec("460"), Status: model.BoiDoente}, {Peso: dec("100"), Status: model.BoiMorto}},
			quantidade: 2, medio: "480", pronto: true,
		},
		{
			name:       "abaixo do limiar",
			bois:       []model.Boi{{Peso: dec("400"), Status: model.BoiAtivo}, {Peso: dec("420"), Status: model.BoiAtivo}},
			quantidade: 2, medio: "410", pronto: false,
		},
		{
			name:       "exatamente no limiar",
			bois:       []model.Boi{{Peso: dec("450"), Status: model.BoiAtivo}},
			quantidade: 1, medio: "450", pronto: true,
		},
		{
			name:       "vendido nunca esta pronto",
			bois:       []model.Boi{{Peso: dec("600"), Status: model.BoiVendido}},
			vendido:    true,
			quantidade: 1, medio: "600", pronto: false,
		},
		{
			name:       "media arredondada em duas casas",
			bois:       []model.Boi{{Peso: dec("100"), Status: model.BoiAtivo}, {Peso: dec("100"), Status: model.BoiAtivo}, {Peso: dec("101"), Status: model.BoiAtivo}},
			quantidade: 3, medio: "100.33", pronto: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &model.Lote{Codigo: "L", DataChegada: data("2024-01-01"), Bois: tt.bois}
			if tt.vendido {
				d := data("2024-06-01")
				l.DataVenda = &d
			}
			resp := resumoLote(l, limiar)
			assert.Equal(t, tt.quantidade, resp.QuantidadeBois)
			assert.True(t, dec(tt.medio).Equal(resp.PesoMedio), "peso medio %s", resp.PesoMedio)
			assert.Equal(t, tt.pronto, resp.ProntoParaVenda)
			assert.Equal(t, tt.vendido, resp.Vendido)
		})
	}
}

func TestObterLote_UsaLimiarConfigurado(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-05", "0", "0")
	m.seedBoi(l, "470", model.BoiAtivo)
	svc := newLoteSvc(m)

	resp, err := svc.Obter(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, resp.ProntoParaVenda)

	m.configs[model.ConfigPesoMedioVenda] = &model.Configuracao{Chave: model.ConfigPesoMedioVenda, Valor: "500"}
	resp, err = svc.Obter(context.Background(), l.ID)
	require.NoError(t, err)
	assert.False(t, resp.ProntoParaVenda)
}

func TestListarLotes_FiltroStatus(t *testing.T) {
	m := newMemStore()
	m.seedLote("A-1", "2024-01-05", "0", "0")
	vendido := m.seedLote("B-1", "2024-01-06", "0", "0")
	d := data("2024-05-01")
	vendido.DataVenda = &d
	svc := newLoteSvc(m)

	todos, err := svc.Listar(context.Background(), dto.LoteFilter{})
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	disp, err := svc.Listar(context.Background(), dto.LoteFilter{Status: "disponivel"})
	require.NoError(t, err)
	require.Len(t, disp, 1)
	assert.Equal(t, "A-1", disp[0].Codigo)

	vend, err := svc.Listar(context.Background(), dto.LoteFilter{Status: "vendido", Busca: "b-"})
	require.NoError(t, err)
	require.Len(t, vend, 1)
	assert.Equal(t, "B-1", vend[0].Codigo)
}

func TestAtualizarLote_CodigoEmUso(t *testing.T) {
	m := newMemStore()
	m.seedLote("A-1", "2024-01-05", "0", "0")
	b := m.seedLote("B-1", "2024-01-06", "0", "0")
	codigo := "A-1"

	_, err := newLoteSvc(m).Atualizar(context.Background(), b.ID, dto.AtualizarLoteRequest{Codigo: &codigo})
	assert.True(t, errors.Is(err, ErrConflito))
}

func TestAtualizarLote_MesmoCodigoPermitido(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("A-1", "2024-01-05", "0", "0")
	codigo := "A-1"
	custo := dec("12000")

	resp, err := newLoteSvc(m).Atualizar(context.Background(), l.ID, dto.AtualizarLoteRequest{Codigo: &codigo, Custo: &custo})
	require.NoError(t, err)
	assert.True(t, custo.Equal(resp.Custo))
}

func TestRegistrarVacinacao(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("A-1", "2024-01-05", "0", "0")
	svc := newLoteSvc(m)

	_, err := svc.RegistrarVacinacao(context.Background(), l.ID, dto.VacinacaoRequest{Data: "2024-01-01"})
	assert.True(t, errors.Is(err, ErrDadosInvalidos))

	resp, err := svc.RegistrarVacinacao(context.Background(), l.ID, dto.VacinacaoRequest{Data: "2024-01-20"})
	require.NoError(t, err)
	assert.True(t, resp.Vacinado)
	require.NotNil(t, resp.DataVacinacao)
	assert.Equal(t, "2024-01-20", *resp.DataVacinacao)
}

func TestExcluirLote(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("A-1", "2024-01-05", "0", "0")
	m.seedBoi(l, "300", model.BoiAtivo)
	svc := newLoteSvc(m)

	m.vendas[l.ID] = &model.Venda{ID: l.ID, LoteID: l.ID, Estado: model.VendaAtiva}
	err := svc.Excluir(context.Background(), l.ID)
	assert.True(t, errors.Is(err, ErrLoteJaVendido))

	pdf := filepath.Join(t.TempDir(), "venda.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o600))
	m.vendas[l.ID].Estado = model.VendaCancelada
	m.vendas[l.ID].PDFPath = &pdf
	require.NoError(t, svc.Excluir(context.Background(), l.ID))
	assert.Empty(t, m.lotes)
	assert.Empty(t, m.bois)
	assert.Empty(t, m.pesos)
	assert.Empty(t, m.vendas)
	_, err = os.Stat(pdf)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = svc.Excluir(context.Background(), l.ID)
	assert.True(t, errors.Is(err, ErrNaoEncontrado))
}
