package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"gestaogado/internal/config"
	"gestaogado/internal/dto"
	"gestaogado/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linkReset = regexp.MustCompile(`/redefinir-senha\?token=([0-9a-f]{64})`)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 12,
		FrontendURL:        "http://app.test/",
	}
}

func newAuthSvc(m *memStore, jobs JobDispatcher) *authService {
	_, _, _, _, usuarios, _, _ := m.repos()
	return NewAuthService(usuarios, testConfig(), jobs).(*authService)
}

func TestLogin_Sucesso(t *testing.T) {
	m := newMemStore()
	u := m.seedUsuario("Ana", "ana@fazenda.test", "segredo123", model.RolAdmin, true)

	resp, err := newAuthSvc(m, nil).Login(context.Background(), dto.LoginRequest{Email: " ana@fazenda.test ", Senha: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 12*3600, resp.ExpiresIn)
	assert.Equal(t, u.ID.String(), resp.User.ID)

	tok, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID.String(), claims["user_id"])
	assert.Equal(t, model.RolAdmin, claims["rol"])
}

func TestLogin_Falhas(t *testing.T) {
	m := newMemStore()
	m.seedUsuario("Ana", "ana@fazenda.test", "segredo123", model.RolAdmin, true)
	m.seedUsuario("Zeca", "zeca@fazenda.test", "segredo123", model.RolPeao, false)
	svc := newAuthSvc(m, nil)

	tests := []struct {
		name  string
		email string
		senha string
	}{
		{"senha errada", "ana@fazenda.test", "errada123"},
		{"email desconhecido", "nada@fazenda.test", "segredo123"},
		{"usuario inativo", "zeca@fazenda.test", "segredo123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), dto.LoginRequest{Email: tt.email, Senha: tt.senha})
			assert.True(t, errors.Is(err, ErrCredenciais))
		})
	}
}

func TestSolicitarReset_EmailDesconhecido(t *testing.T) {
	m := newMemStore()
	jobs := &stubJobs{}

	err := newAuthSvc(m, jobs).SolicitarReset(context.Background(), dto.EsqueciSenhaRequest{Email: "nada@fazenda.test"})
	require.NoError(t, err)
	assert.Empty(t, jobs.emails)
}

func TestRedefinirSenha_FluxoCompleto(t *testing.T) {
	m := newMemStore()
	u := m.seedUsuario("Ana", "ana@fazenda.test", "segredo123", model.RolAdmin, true)
	jobs := &stubJobs{}
	svc := newAuthSvc(m, jobs)
	ctx := context.Background()

	require.NoError(t, svc.SolicitarReset(ctx, dto.EsqueciSenhaRequest{Email: "ana@fazenda.test"}))
	require.Len(t, jobs.emails, 1)
	assert.Equal(t, "ana@fazenda.test", jobs.emails[0].ToEmail)
	assert.Contains(t, jobs.emails[0].Body, "http://app.test/redefinir-senha?token=")

	match := linkReset.FindStringSubmatch(jobs.emails[0].Body)
	require.Len(t, match, 2)
	token := match[1]
	require.NotNil(t, m.usuarios[u.ID].ResetToken)
	assert.NotEqual(t, token, *m.usuarios[u.ID].ResetToken, "only the hash is stored")

	require.NoError(t, svc.RedefinirSenha(ctx, dto.RedefinirSenhaRequest{Token: token, NovaSenha: "novasenha1"}))
	assert.Nil(t, m.usuarios[u.ID].ResetToken)

	err := svc.RedefinirSenha(ctx, dto.RedefinirSenhaRequest{Token: token, NovaSenha: "outrasenha"})
	assert.True(t, errors.Is(err, ErrTokenInvalido), "token is single use")

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@fazenda.test", Senha: "segredo123"})
	assert.True(t, errors.Is(err, ErrCredenciais))
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@fazenda.test", Senha: "novasenha1"})
	assert.NoError(t, err)
}

func TestRedefinirSenha_Expirado(t *testing.T) {
	m := newMemStore()
	m.seedUsuario("Ana", "ana@fazenda.test", "segredo123", model.RolAdmin, true)
	jobs := &stubJobs{}
	svc := newAuthSvc(m, jobs)
	ctx := context.Background()
	inicio := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return inicio }

	require.NoError(t, svc.SolicitarReset(ctx, dto.EsqueciSenhaRequest{Email: "ana@fazenda.test"}))
	token := linkReset.FindStringSubmatch(jobs.emails[0].Body)[1]

	svc.now = func() time.Time { return inicio.Add(resetTokenTTL + time.Minute) }
	err := svc.RedefinirSenha(ctx, dto.RedefinirSenhaRequest{Token: token, NovaSenha: "novasenha1"})
	assert.True(t, errors.Is(err, ErrTokenInvalido))
}

func TestMe_UsuarioInativo(t *testing.T) {
	m := newMemStore()
	u := m.seedUsuario("Zeca", "zeca@fazenda.test", "segredo123", model.RolPeao, false)

	_, err := newAuthSvc(m, nil).Me(context.Background(), u.ID)
	assert.True(t, errors.Is(err, ErrTokenInvalido))
}
