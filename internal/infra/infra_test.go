package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gestaogado/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_AbreEFecha(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: 20 * time.Millisecond})
	falha := errors.New("dial tcp: refused")

	assert.Equal(t, falha, cb.Execute(func() error { return falha }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, falha, cb.Execute(func() error { return falha }))
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestCircuitBreaker_FalhaNoHalfOpenReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "webhook", FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond})
	_ = cb.Execute(func() error { return errors.New("x") })
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errors.New("y") })
	assert.Equal(t, CBOpen, cb.State())
	assert.Equal(t, "webhook", cb.Name())
}

func TestCircuitBreaker_HalfOpenUmTestePorVez(t *testing.T) {
	agora := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return agora }

	_ = cb.Execute(func() error { return errors.New("relay fora") })
	require.Equal(t, CBOpen, cb.State())
	agora = agora.Add(59 * time.Second)
	require.Equal(t, CBOpen, cb.State())
	agora = agora.Add(time.Second)
	require.Equal(t, CBHalfOpen, cb.State())

	var concorrente error
	require.NoError(t, cb.Execute(func() error {
		concorrente = cb.Execute(func() error { return nil })
		return nil
	}))
	assert.ErrorIs(t, concorrente, ErrCircuitOpen)
	assert.Equal(t, CBHalfOpen, cb.State(), "one success of two keeps it half-open")

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCache_NilEhSempreMiss(t *testing.T) {
	c := NewCache(nil, time.Minute)
	require.Nil(t, c)

	var dest map[string]int
	assert.False(t, c.Get(context.Background(), "k", &dest))
	c.Set(context.Background(), "k", map[string]int{"a": 1})
	c.Invalidate(context.Background(), "relatorio:")
}

func TestWebhookClient(t *testing.T) {
	var got WebhookPayload
	status := http.StatusNoContent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "webhook", FailureThreshold: 1, OpenTimeout: time.Minute})
	client := NewWebhookClient(srv.URL, cb)
	lote := "lote-1"

	require.NoError(t, client.Post(context.Background(), WebhookPayload{Evento: "notificacao.criada", NotificacaoID: "n1", LoteID: &lote}))
	assert.Equal(t, "n1", got.NotificacaoID)
	require.NotNil(t, got.LoteID)
	assert.Equal(t, "lote-1", *got.LoteID)

	status = http.StatusBadGateway
	err := client.Post(context.Background(), WebhookPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.ErrorIs(t, client.Post(context.Background(), WebhookPayload{}), ErrCircuitOpen)
}

func TestWebhookClient_Desativado(t *testing.T) {
	client := NewWebhookClient("", nil)
	assert.Nil(t, client)
	assert.NoError(t, client.Post(context.Background(), WebhookPayload{}))
}

func TestMailer_SemHost(t *testing.T) {
	m := NewMailer(&config.Config{SMTPPort: 587}, nil)
	assert.False(t, m.Enabled())
	assert.Error(t, m.Send("a@b.c", "s", "b", ""))
}

func TestGenerateVendaPDF(t *testing.T) {
	dir := t.TempDir()
	r := VendaReport{
		VendaID:     "0b6f1c2e-1111-2222-3333-444455556666",
		CodigoLote:  "L 01/2024",
		DataChegada: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DataVenda:   time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Cabecas:     2,
		PesoTotal:   decimal.NewFromInt(980),
		PesoMedio:   decimal.NewFromInt(490),
		Valor:       decimal.NewFromInt(10000),
		Lucro:       decimal.NewFromInt(2500),
		Margem:      decimal.NewFromInt(25),
		Bois: []VendaReportBoi{
			{Brinco: "A-1", Peso: decimal.NewFromInt(480), Status: "vendido"},
			{Brinco: "", Peso: decimal.NewFromInt(500), Status: "vendido"},
		},
	}

	path, err := GenerateVendaPDF(r, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.Contains(t, path, "venda_L_01_2024_")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "L-01_a__o", sanitizeFileName("L-01 a/ão"))
}
