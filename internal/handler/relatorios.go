package handler

import (
	"net/http"

	"gestaogado/internal/dto"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

type RelatoriosHandler struct{ svc service.RelatorioService }

func NewRelatoriosHandler(svc service.RelatorioService) *RelatoriosHandler {
	return &RelatoriosHandler{svc: svc}
}

// Vendas godoc
// @Summary      Vendas agrupadas por periodo ou lote
// @Tags         relatorios
// @Produce      json
// @Security     BearerAuth
// @Param        agrupar query string false "dia | semana | mes | lote (default mes)"
// @Param        inicio  query string false "YYYY-MM-DD"
// @Param        fim     query string false "YYYY-MM-DD"
// @Success      200     {object} dto.RelatorioVendasResponse
// @Router       /v1/adm/relatorios/vendas [get]
func (h *RelatoriosHandler) Vendas(c *gin.Context) {
	var filter dto.RelatorioVendasFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.VendasAgrupadas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RelatoriosHandler) Lucro(c *gin.Context) {
	resp, err := h.svc.LucroPorLote(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RelatoriosHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
