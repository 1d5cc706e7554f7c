package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gestaogado/internal/apierror"
	"gestaogado/internal/dto"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

type fakeVendas struct {
	registrar func(dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	caminho   func(uuid.UUID) (string, error)
	listar    func(dto.VendaFilter) ([]dto.VendaResponse, error)
}

func (f *fakeVendas) Registrar(_ context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	return f.registrar(req)
}

func (f *fakeVendas) Cancelar(_ context.Context, _ uuid.UUID) (*dto.VendaResponse, error) {
	return nil, service.ErrConflito
}

func (f *fakeVendas) Obter(_ context.Context, _ uuid.UUID) (*dto.VendaResponse, error) {
	return nil, service.ErrNaoEncontrado
}

func (f *fakeVendas) Listar(_ context.Context, filter dto.VendaFilter) ([]dto.VendaResponse, error) {
	return f.listar(filter)
}

func (f *fakeVendas) CaminhoPDF(_ context.Context, id uuid.UUID) (string, error) {
	return f.caminho(id)
}

var _ service.VendaService = (*fakeVendas)(nil)

type fakeAuth struct {
	login func(dto.LoginRequest) (*dto.LoginResponse, error)
	reset []string
}

func (f *fakeAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	return f.login(req)
}

func (f *fakeAuth) Me(_ context.Context, _ uuid.UUID) (*dto.UsuarioResponse, error) {
	return nil, service.ErrTokenInvalido
}

func (f *fakeAuth) SolicitarReset(_ context.Context, req dto.EsqueciSenhaRequest) error {
	f.reset = append(f.reset, req.Email)
	return nil
}

func (f *fakeAuth) RedefinirSenha(_ context.Context, _ dto.RedefinirSenhaRequest) error {
	return fmt.Errorf("reset: %w", service.ErrTokenInvalido)
}

var _ service.AuthService = (*fakeAuth)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRespondError_Mapeamento(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("lote: %w", service.ErrNaoEncontrado), http.StatusNotFound},
		{service.ErrLoteJaVendido, http.StatusConflict},
		{service.ErrConflito, http.StatusConflict},
		{service.ErrCredenciais, http.StatusUnauthorized},
		{service.ErrTokenInvalido, http.StatusUnauthorized},
		{service.ErrDadosInvalidos, http.StatusBadRequest},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newEngine()
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err) })
			w := doJSON(r, http.MethodGet, "/", nil)
			assert.Equal(t, tt.status, w.Code)

			var body apierror.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Erro interno do servidor", body.Message)
			} else {
				assert.Equal(t, tt.err.Error(), body.Message)
			}
		})
	}
}

func TestVendas_Registrar(t *testing.T) {
	loteID := uuid.NewString()
	vendido := false
	fake := &fakeVendas{registrar: func(req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
		if vendido {
			return nil, fmt.Errorf("lote L-01 ja foi vendido: %w", service.ErrLoteJaVendido)
		}
		vendido = true
		return &dto.VendaResponse{ID: uuid.NewString(), LoteID: req.LoteID, Valor: req.Valor}, nil
	}}
	r := newEngine()
	r.POST("/vendas", NewVendasHandler(fake).Registrar)
	body := map[string]interface{}{"lote_id": loteID, "data_venda": "2024-06-15", "valor": 10000}

	w := doJSON(r, http.MethodPost, "/vendas", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.VendaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, loteID, resp.LoteID)

	w = doJSON(r, http.MethodPost, "/vendas", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ja foi vendido")
}

func TestVendas_Registrar_Validacao(t *testing.T) {
	fake := &fakeVendas{registrar: func(dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	r := newEngine()
	r.POST("/vendas", NewVendasHandler(fake).Registrar)

	w := doJSON(r, http.MethodPost, "/vendas", map[string]interface{}{"lote_id": "x", "data_venda": "2024-06-15", "valor": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Contains(t, verr.Fields, "LoteID")
	assert.Contains(t, verr.Fields, "Valor")

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/vendas", strings.NewReader("{"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVendas_ListarFiltroInvalido(t *testing.T) {
	fake := &fakeVendas{listar: func(f dto.VendaFilter) ([]dto.VendaResponse, error) {
		return []dto.VendaResponse{}, nil
	}}
	r := newEngine()
	r.GET("/vendas", NewVendasHandler(fake).Listar)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/vendas?estado=todas", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(r, http.MethodGet, "/vendas?estado=perdida", nil).Code)
}

func TestVendas_PDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venda.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 teste"), 0o600))
	pronto := uuid.New()
	fake := &fakeVendas{caminho: func(id uuid.UUID) (string, error) {
		if id == pronto {
			return path, nil
		}
		return "", service.ErrNaoEncontrado
	}}
	r := newEngine()
	h := NewVendasHandler(fake)
	r.GET("/vendas/:id/pdf", h.PDF)
	r.GET("/vendas/:id", h.Obter)

	w := doJSON(r, http.MethodGet, "/vendas/"+pronto.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "venda-"+pronto.String()+".pdf")
	assert.Equal(t, "%PDF-1.4 teste", w.Body.String())

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/vendas/"+uuid.NewString()+"/pdf", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/vendas/nao-e-uuid/pdf", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/vendas/"+uuid.NewString(), nil).Code)
}

func TestAuth_LoginGravaCookie(t *testing.T) {
	fake := &fakeAuth{login: func(req dto.LoginRequest) (*dto.LoginResponse, error) {
		if req.Senha != "segredo123" {
			return nil, service.ErrCredenciais
		}
		return &dto.LoginResponse{Token: "jwt-token", TokenType: "bearer", ExpiresIn: 3600}, nil
	}}
	r := newEngine()
	h := NewAuthHandler(fake, CookieConfig{Name: "token"})
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	w := doJSON(r, http.MethodPost, "/login", dto.LoginRequest{Email: "ana@fazenda.test", Senha: "segredo123"})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token=jwt-token")
	assert.Contains(t, cookie, "HttpOnly")

	w = doJSON(r, http.MethodPost, "/login", dto.LoginRequest{Email: "ana@fazenda.test", Senha: "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = doJSON(r, http.MethodPost, "/login", dto.LoginRequest{Email: "nao-e-email", Senha: "segredo123"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAuth_ResetSenha(t *testing.T) {
	fake := &fakeAuth{}
	r := newEngine()
	h := NewAuthHandler(fake, CookieConfig{Name: "token"})
	r.POST("/esqueci", h.EsqueciSenha)
	r.POST("/redefinir", h.RedefinirSenha)

	w := doJSON(r, http.MethodPost, "/esqueci", dto.EsqueciSenhaRequest{Email: "quem@fazenda.test"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"quem@fazenda.test"}, fake.reset)

	w = doJSON(r, http.MethodPost, "/redefinir", dto.RedefinirSenhaRequest{Token: "abc", NovaSenha: "curta"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/redefinir", dto.RedefinirSenhaRequest{Token: "abc", NovaSenha: "longa-o-bastante"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth_SemBanco(t *testing.T) {
	r := newEngine()
	r.GET("/health", Health(nil, nil))

	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, false, body["ok"])
}
