package handler

import (
	"net/http"

	"gestaogado/internal/dto"
	"gestaogado/internal/middleware"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificacoesHandler serves the same route set under /v1/adm and /v1/peao;
// the acting user always comes from the token.
type NotificacoesHandler struct{ svc service.NotificacaoService }

func NewNotificacoesHandler(svc service.NotificacaoService) *NotificacoesHandler {
	return &NotificacoesHandler{svc: svc}
}

// Listar godoc
// @Summary      Caixa de entrada
// @Tags         notificacoes
// @Produce      json
// @Security     BearerAuth
// @Param        lidas query string false "true | false"
// @Success      200   {array} dto.NotificacaoResponse
// @Router       /v1/adm/notificacoes [get]
func (h *NotificacoesHandler) Listar(c *gin.Context) {
	var filter dto.NotificacaoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarRecebidas(c.Request.Context(), middleware.GetClaims(c).UUID(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacoesHandler) Enviadas(c *gin.Context) {
	resp, err := h.svc.ListarEnviadas(c.Request.Context(), middleware.GetClaims(c).UUID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacoesHandler) NaoLidas(c *gin.Context) {
	resp, err := h.svc.ContarNaoLidas(c.Request.Context(), middleware.GetClaims(c).UUID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacoesHandler) Thread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Thread(c.Request.Context(), middleware.GetClaims(c).UUID(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Enviar godoc
// @Summary      Enviar mensagem
// @Description  Sem destinatario_id, a mensagem de um peao vai para todos os administradores ativos.
// @Tags         notificacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.EnviarNotificacaoRequest true "Mensagem"
// @Success      201  {array}  dto.NotificacaoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/peao/notificacoes [post]
func (h *NotificacoesHandler) Enviar(c *gin.Context) {
	var req dto.EnviarNotificacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), remetente(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NotificacoesHandler) Responder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ResponderNotificacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Responder(c.Request.Context(), remetente(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NotificacoesHandler) MarcarLida(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MarcarLida(c.Request.Context(), middleware.GetClaims(c).UUID(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacoesHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), middleware.GetClaims(c).UUID(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
