package handler

import (
	"net/http"

	"gestaogado/internal/dto"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

type LotesHandler struct {
	svc   service.LoteService
	bois  service.BoiService
	pesos service.PesoService
}

func NewLotesHandler(svc service.LoteService, bois service.BoiService, pesos service.PesoService) *LotesHandler {
	return &LotesHandler{svc: svc, bois: bois, pesos: pesos}
}

// Criar godoc
// @Summary      Criar lote
// @Description  Cria o lote e os bois iniciais numa unica transacao; cada boi recebe a primeira pesagem na data de chegada.
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarLoteRequest true "Lote"
// @Success      201  {object} dto.LoteResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/adm/lotes [post]
func (h *LotesHandler) Criar(c *gin.Context) {
	var req dto.CriarLoteRequest
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

// Listar godoc
// @Summary      Listar lotes
// @Tags         lotes
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "vendido | disponivel | todos"
// @Param        busca  query string false "Trecho do codigo"
// @Success      200 {array} dto.LoteResponse
// @Router       /v1/adm/lotes [get]
func (h *LotesHandler) Listar(c *gin.Context) {
	var filter dto.LoteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) Obter(c *gin.Context) {
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

func (h *LotesHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarLoteRequest
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

// Excluir godoc
// @Summary      Excluir lote
// @Description  Remove o lote, seus bois e o historico de peso. Recusado se houver venda ativa.
// @Tags         lotes
// @Security     BearerAuth
// @Param        id path string true "UUID do lote"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/adm/lotes/{id} [delete]
func (h *LotesHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LotesHandler) RegistrarVacinacao(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.VacinacaoRequest
	// empty body means "today"
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVacinacao(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) ListarBois(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.bois.ListarPorLote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LotesHandler) ListarPesos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.pesos.ListarPorLote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
