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

func newPesoSvc(m *memStore) *pesoService {
	lotes, bois, pesos, _, _, _, _ := m.repos()
	svc := NewPesoService(pesos, bois, lotes, nil).(*pesoService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func pesoAtual(t *testing.T, m *memStore, boiID uuid.UUID) string {
	t.Helper()
	b, ok := m.bois[boiID]
	require.True(t, ok)
	return b.Peso.String()
}

func TestRegistrarPeso_UsaMaisRecentePorData(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	boi := m.seedBoi(l, "300", model.BoiAtivo)
	svc := newPesoSvc(m)
	ctx := context.Background()

	resp, err := svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("380"), DataPesagem: "2024-03-01"})
	require.NoError(t, err)
	assert.True(t, dec("380").Equal(resp.PesoAtual))
	require.NotNil(t, resp.Registro)
	assert.Equal(t, l.ID.String(), resp.Registro.LoteID)

	// an older weighing inserted later must not replace the current weight
	resp, err = svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("340"), DataPesagem: "2024-02-01"})
	require.NoError(t, err)
	assert.True(t, dec("380").Equal(resp.PesoAtual))
	assert.Equal(t, "380", pesoAtual(t, m, boi.ID))

	// same day, later time of day wins
	_, err = svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("385"), DataPesagem: "2024-03-01T15:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "385", pesoAtual(t, m, boi.ID))
}

func TestRegistrarPeso_SemDataUsaAgora(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	boi := m.seedBoi(l, "300", model.BoiAtivo)

	resp, err := newPesoSvc(m).Registrar(context.Background(), boi.ID, dto.RegistrarPesoRequest{Peso: dec("410")})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T09:00:00Z", resp.Registro.DataPesagem)
	assert.Equal(t, "410", pesoAtual(t, m, boi.ID))
}

func TestRegistrarPeso_Rejeicoes(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	morto := m.seedBoi(l, "300", model.BoiMorto)
	vendido := m.seedBoi(l, "300", model.BoiVendido)
	vivo := m.seedBoi(l, "300", model.BoiAtivo)
	svc := newPesoSvc(m)
	ctx := context.Background()

	_, err := svc.Registrar(ctx, morto.ID, dto.RegistrarPesoRequest{Peso: dec("310")})
	assert.True(t, errors.Is(err, ErrConflito))

	_, err = svc.Registrar(ctx, vendido.ID, dto.RegistrarPesoRequest{Peso: dec("310")})
	assert.True(t, errors.Is(err, ErrLoteJaVendido))

	_, err = svc.Registrar(ctx, vivo.ID, dto.RegistrarPesoRequest{Peso: dec("0")})
	assert.True(t, errors.Is(err, ErrDadosInvalidos))

	_, err = svc.Registrar(ctx, uuid.New(), dto.RegistrarPesoRequest{Peso: dec("310")})
	assert.True(t, errors.Is(err, ErrNaoEncontrado))
}

func TestAtualizarPeso_Recalcula(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	boi := m.seedBoi(l, "300", model.BoiAtivo)
	svc := newPesoSvc(m)
	ctx := context.Background()

	fev, err := svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("340"), DataPesagem: "2024-02-01"})
	require.NoError(t, err)
	mar, err := svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("380"), DataPesagem: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "380", pesoAtual(t, m, boi.ID))

	// moving the March record back in time makes February the latest
	novaData := "2024-01-15"
	marID := uuid.MustParse(mar.Registro.ID)
	resp, err := svc.Atualizar(ctx, marID, dto.AtualizarPesoRequest{DataPesagem: &novaData})
	require.NoError(t, err)
	assert.True(t, dec("340").Equal(resp.PesoAtual))

	// correcting the latest value is reflected immediately
	novoPeso := dec("345")
	fevID := uuid.MustParse(fev.Registro.ID)
	_, err = svc.Atualizar(ctx, fevID, dto.AtualizarPesoRequest{Peso: &novoPeso})
	require.NoError(t, err)
	assert.Equal(t, "345", pesoAtual(t, m, boi.ID))
}

func TestExcluirPeso_Recalcula(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	boi := m.seedBoi(l, "300", model.BoiAtivo)
	svc := newPesoSvc(m)
	ctx := context.Background()

	mar, err := svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec("380"), DataPesagem: "2024-03-01"})
	require.NoError(t, err)

	resp, err := svc.Excluir(ctx, uuid.MustParse(mar.Registro.ID))
	require.NoError(t, err)
	assert.Nil(t, resp.Registro)
	assert.True(t, dec("300").Equal(resp.PesoAtual))

	// removing the last remaining record keeps the last known weight
	for id := range m.pesos {
		_, err := svc.Excluir(ctx, id)
		require.NoError(t, err)
	}
	assert.Empty(t, m.pesos)
	assert.Equal(t, "300", pesoAtual(t, m, boi.ID))

	_, err = svc.Excluir(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNaoEncontrado))
}

func TestListarPesos_MaisRecentePrimeiro(t *testing.T) {
	m := newMemStore()
	l := m.seedLote("L-01", "2024-01-01", "0", "0")
	boi := m.seedBoi(l, "300", model.BoiAtivo)
	svc := newPesoSvc(m)
	ctx := context.Background()

	for _, p := range []struct{ peso, data string }{
		{"350", "2024-02-01"}, {"390", "2024-04-01"}, {"370", "2024-03-01"},
	} {
		_, err := svc.Registrar(ctx, boi.ID, dto.RegistrarPesoRequest{Peso: dec(p.peso), DataPesagem: p.data})
		require.NoError(t, err)
	}

	lista, err := svc.Listar(ctx, boi.ID)
	require.NoError(t, err)
	require.Len(t, lista, 4)
	var datas []string
	for _, p := range lista {
		datas = append(datas, p.DataPesagem[:10])
	}
	assert.Equal(t, []string{"2024-04-01", "2024-03-01", "2024-02-01", "2024-01-01"}, datas)

	porLote, err := svc.ListarPorLote(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, porLote, 4)
}

func TestPesoMaisRecente_IgnoraOrdemDeInsercao(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pesos := []model.PesoHistorico{
		{Peso: dec("400"), DataPesagem: base.AddDate(0, 2, 0), CreatedAt: base},
		{Peso: dec("420"), DataPesagem: base.AddDate(0, 3, 0), CreatedAt: base.Add(-time.Hour)},
		{Peso: dec("410"), DataPesagem: base.AddDate(0, 1, 0), CreatedAt: base.Add(time.Hour)},
	}
	assert.Equal(t, "420", pesoMaisRecente(pesos).Peso.String())
	assert.Nil(t, pesoMaisRecente(nil))

	// ties on DataPesagem go to the record created last
	empate := []model.PesoHistorico{
		{Peso: dec("500"), DataPesagem: base, CreatedAt: base.Add(time.Minute)},
		{Peso: dec("505"), DataPesagem: base, CreatedAt: base},
	}
	assert.Equal(t, "500", pesoMaisRecente(empate).Peso.String())
}
