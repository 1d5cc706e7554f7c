package handler

import (
	"net/http"

	"gestaogado/internal/dto"
	"gestaogado/internal/service"

	"github.com/gin-gonic/gin"
)

type BoisHandler struct {
	svc   service.BoiService
	pesos service.PesoService
}

func NewBoisHandler(svc service.BoiService, pesos service.PesoService) *BoisHandler {
	return &BoisHandler{svc: svc, pesos: pesos}
}

func (h *BoisHandler) Criar(c *gin.Context) {
	var req dto.CriarBoiRequest
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

func (h *BoisHandler) Obter(c *gin.Context) {
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

func (h *BoisHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarBoiRequest
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

// DefinirAlerta godoc
// @Summary      Registrar ou limpar alerta do boi
// @Tags         bois
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string            true "UUID do boi"
// @Param        body body dto.AlertaRequest true "Alerta (vazio limpa)"
// @Success      200  {object} dto.BoiResponse
// @Router       /v1/peao/bois/{id}/alerta [put]
func (h *BoisHandler) DefinirAlerta(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AlertaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirAlerta(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BoisHandler) Excluir(c *gin.Context) {
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

func (h *BoisHandler) ListarPesos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.pesos.Listar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPeso godoc
// @Summary      Registrar pesagem
// @Description  Insere um registro e recalcula o peso atual a partir da pesagem mais recente por data.
// @Tags         pesos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID do boi"
// @Param        body body dto.RegistrarPesoRequest true "Pesagem"
// @Success      201  {object} dto.PesagemResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/adm/bois/{id}/pesos [post]
func (h *BoisHandler) RegistrarPeso(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarPesoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.pesos.Registrar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Pesos Handler ────────────────────────────────────────────────────────────

type PesosHandler struct{ svc service.PesoService }

func NewPesosHandler(svc service.PesoService) *PesosHandler { return &PesosHandler{svc: svc} }

func (h *PesosHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarPesoRequest
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

func (h *PesosHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Excluir(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
