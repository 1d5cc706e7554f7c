package handler

import (
	"net/http"

	"gestaogado/internal/dto"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

type ConfiguracoesHandler struct{ svc service.ConfiguracaoService }

func NewConfiguracoesHandler(svc service.ConfiguracaoService) *ConfiguracoesHandler {
	return &ConfiguracoesHandler{svc: svc}
}

func (h *ConfiguracoesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConfiguracoesHandler) Obter(c *gin.Context) {
	resp, err := h.svc.Obter(c.Request.Context(), c.Param("chave"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atualizar godoc
// @Summary      Gravar parametro do sistema
// @Description  peso_medio_venda e dias_alerta_vacinacao precisam ser numeros positivos.
// @Tags         configuracoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chave path string                           true "Chave"
// @Param        body  body dto.AtualizarConfiguracaoRequest true "Valor"
// @Success      200   {object} dto.ConfiguracaoResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/adm/configuracoes/{chave} [put]
func (h *ConfiguracoesHandler) Atualizar(c *gin.Context) {
	var req dto.AtualizarConfiguracaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), c.Param("chave"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
