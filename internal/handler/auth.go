package handler

import (
	"net/http"

	"gestaogado/internal/apierror"
	"gestaogado/internal/dto"
	"gestaogado/internal/middleware"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

// CookieConfig describes the HTTP-only session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	svc    service.AuthService
	cookie CookieConfig
}

func NewAuthHandler(svc service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

// Login godoc
// @Summary Login
// @Description Valida credenciais e grava o token em cookie HTTP-only. O token tambem vem no corpo para clientes que usam Bearer.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciais"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, resp.Token, resp.ExpiresIn, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Logout
// @Tags auth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Usuario autenticado
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UsuarioResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Me(c.Request.Context(), claims.UUID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EsqueciSenha godoc
// @Summary Solicitar redefinicao de senha
// @Description Sempre responde 202, exista ou nao o e-mail.
// @Tags auth
// @Accept json
// @Param body body dto.EsqueciSenhaRequest true "E-mail"
// @Success 202
// @Router /v1/auth/esqueci-senha [post]
func (h *AuthHandler) EsqueciSenha(c *gin.Context) {
	var req dto.EsqueciSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SolicitarReset(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Se o e-mail estiver cadastrado, enviaremos um link de redefinicao."})
}

// RedefinirSenha godoc
// @Summary Redefinir senha com token
// @Tags auth
// @Accept json
// @Param body body dto.RedefinirSenhaRequest true "Token e nova senha"
// @Success 204
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/redefinir-senha [post]
func (h *AuthHandler) RedefinirSenha(c *gin.Context) {
	var req dto.RedefinirSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RedefinirSenha(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.UsuarioService }

func NewUsuariosHandler(svc service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Criar(c *gin.Context) {
	var req dto.CriarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Obter(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Desativar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == middleware.GetClaims(c).UUID() {
		c.JSON(http.StatusBadRequest, apierror.New("Nao e possivel desativar o proprio usuario"))
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
