package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gestaogado/internal/dto"
	"gestaogado/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVendaSvc(m *memStore, jobs JobDispatcher) VendaService {
	lotes, bois, _, vendas, usuarios, _, _ := m.repos()
	return NewVendaService(vendas, lotes, bois, usuarios, jobs, nil)
}

func TestRegistrarVenda_FechaLoteEAgendaRelatorio(t *testing.T) {
	m := newMemStore()
	m.seedUsuario("Ana", "ana@fazenda.test", "segredo123", model.RolAdmin, true)
	m.seedUsuario("Zeca", "zeca@fazenda.test", "segredo123", model.RolPeao, true)
	l := m.seedLote("L-01", "2024-01-01", "6000", "1500")
	ativo := m.seedBoi(l, "480", model.BoiAtivo)
	doente := m.seedBoi(l, "420", model.BoiDoente)
	morto := m.seedBoi(l, "300", model.BoiMorto)
	jobs := &stubJobs{}

	resp, err := newVendaSvc(m, jobs).Registrar(context.Background(), dto.RegistrarVendaRequest{
		LoteID: l.ID.String(), DataVenda: "2024-06-15", Valor: dec("10000"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.VendaAtiva, resp.Estado)
	assert.Equal(t, "L-01", resp.CodigoLote)
	assert.Equal(t, 2, resp.Cabecas)
	assert.True(t, dec("2500").Equal(resp.Lucro))
	assert.True(t, dec("25").Equal(resp.Margem))

	require.NotNil(t, m.lotes[l.ID].DataVenda)
	assert.Equal(t, data("2024-06-15"), *m.lotes[l.ID].DataVenda)
	assert.Equal(t, model.BoiVendido, m.bois[ativo.ID].Status)
	assert.Equal(t, model.BoiVendido, m.bois[doente.ID].Status)
	assert.Equal(t, model.BoiMorto, m.bois[morto.ID].Status)

	require.Len(t, jobs.relatorios, 1)
	job := jobs.relatorios[0]
	assert.Equal(t, resp.ID, job.Report.VendaID)
	assert.Equal(t, 2, job.Report.Cabecas)
	assert.Len(t, job.Report.Bois, 3)
	assert.Equal(t, []string{"ana@fazenda.test"}, job.Destinatarios)
}

func TestRegistrarVenda_SegundaVendaConflito(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "6000", "1500")
	m.seedBoi(l, "480", model.BoiAtivo)
	svc := newVendaSvc(m, nil)
	req := dto.RegistrarVendaRequest{LoteID: l.ID.String(), DataVenda: "2024-06-15", Valor: dec("10000")}

	_, err := svc.Registrar(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Registrar(context.Background(), req)
	assert.True(t, errors.Is(err, ErrLoteJaVendido))
	assert.Len(t, m.vendas, 1)
}

func TestRegistrarVenda_Validacoes(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-03-01", "0", "0")
	svc := newVendaSvc(m, nil)
	ctx := context.Background()

	_, err := svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: l.ID.String(), DataVenda: "2024-02-01", Valor: dec("100")})
	assert.True(t, errors.Is(err, ErrDadosInvalidos), "sale before arrival")

	_, err = svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: l.ID.String(), DataVenda: "2024-04-01", Valor: dec("0")})
	assert.True(t, errors.Is(err, ErrDadosInvalidos), "zero value")

	_, err = svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: uuid.NewString(), DataVenda: "2024-04-01", Valor: dec("100")})
	assert.True(t, errors.Is(err, ErrNaoEncontrado))
	assert.Empty(t, m.vendas)
}

func TestCancelarVenda_ReabreLote(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "6000", "1500")
	boi := m.seedBoi(l, "480", model.BoiAtivo)
	doente := m.seedBoi(l, "420", model.BoiDoente)
	morto := m.seedBoi(l, "300", model.BoiMorto)
	svc := newVendaSvc(m, nil)
	ctx := context.Background()
	req := dto.RegistrarVendaRequest{LoteID: l.ID.String(), DataVenda: "2024-06-15", Valor: dec("10000")}

	venda, err := svc.Registrar(ctx, req)
	require.NoError(t, err)

	cancelada, err := svc.Cancelar(ctx, uuid.MustParse(venda.ID))
	require.NoError(t, err)
	assert.Equal(t, model.VendaCancelada, cancelada.Estado)
	assert.Nil(t, m.lotes[l.ID].DataVenda)
	assert.Equal(t, model.BoiAtivo, m.bois[boi.ID].Status)
	assert.Equal(t, model.BoiDoente, m.bois[doente.ID].Status)
	assert.Equal(t, model.BoiMorto, m.bois[morto.ID].Status)
	assert.Nil(t, m.bois[doente.ID].StatusAntesVenda)

	_, err = svc.Cancelar(ctx, uuid.MustParse(venda.ID))
	assert.True(t, errors.Is(err, ErrConflito))

	// the lote can be sold again
	_, err = svc.Registrar(ctx, req)
	require.NoError(t, err)
}

func TestListarVendas_FiltroEstado(t *testing.T) {
	m := newMemStore()
	a := m.seedLote("A", "2024-01-01", "100", "0")
	b := m.seedLote("B", "2024-01-01", "100", "0")
	svc := newVendaSvc(m, nil)
	ctx := context.Background()

	va, err := svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: a.ID.String(), DataVenda: "2024-03-01", Valor: dec("200")})
	require.NoError(t, err)
	_, err = svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: b.ID.String(), DataVenda: "2024-04-01", Valor: dec("300")})
	require.NoError(t, err)
	_, err = svc.Cancelar(ctx, uuid.MustParse(va.ID))
	require.NoError(t, err)

	ativas, err := svc.Listar(ctx, dto.VendaFilter{Estado: model.VendaAtiva})
	require.NoError(t, err)
	require.Len(t, ativas, 1)
	assert.Equal(t, "B", ativas[0].CodigoLote)

	todas, err := svc.Listar(ctx, dto.VendaFilter{Estado: "todas"})
	require.NoError(t, err)
	assert.Len(t, todas, 2)

	marco, err := svc.Listar(ctx, dto.VendaFilter{Inicio: "2024-03-01", Fim: "2024-03-31"})
	require.NoError(t, err)
	assert.Len(t, marco, 1)

	_, err = svc.Listar(ctx, dto.VendaFilter{Inicio: "2024-04-01", Fim: "2024-03-01"})
	assert.True(t, errors.Is(err, ErrDadosInvalidos))
}

func TestCaminhoPDF(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("A", "2024-01-01", "100", "0")
	svc := newVendaSvc(m, nil)
	ctx := context.Background()

	v, err := svc.Registrar(ctx, dto.RegistrarVendaRequest{LoteID: l.ID.String(), DataVenda: "2024-03-01", Valor: dec("200")})
	require.NoError(t, err)
	id := uuid.MustParse(v.ID)

	_, err = svc.CaminhoPDF(ctx, id)
	assert.True(t, errors.Is(err, ErrNaoEncontrado), "not generated yet")

	path := filepath.Join(t.TempDir(), "venda.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	m.vendas[id].PDFPath = &path

	got, err := svc.CaminhoPDF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestCalcularLucro(t *testing.T) {
	tests := []struct {
		name                string
		valor, custo, gasto string
		lucro, margem       string
	}{
		{"lucro", "10000", "6000", "1500", "2500", "25"},
		{"prejuizo", "5000", "6000", "500", "-1500", "-30"},
		{"valor zero", "0", "100", "0", "-100", "0"},
		{"margem arredondada", "3000", "1000", "0", "2000", "66.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lucro, margem := calcularLucro(dec(tt.valor), dec(tt.custo), dec(tt.gasto))
			assert.True(t, dec(tt.lucro).Equal(lucro), "lucro %s", lucro)
			assert.True(t, dec(tt.margem).Equal(margem), "margem %s", margem)
		})
	}
}
