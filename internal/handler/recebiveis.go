package handler

import (
	"net/http"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RecebiveisHandler struct{ svc service.RecebivelService }

func NewRecebiveisHandler(svc service.RecebivelService) *RecebiveisHandler {
	return &RecebiveisHandler{svc: svc}
}

// Cadastrar godoc
// @Summary      Cadastrar recebíveis
// @Description  Registra um lote de recebíveis em status "enviado" para avaliação.
// @Tags         recebiveis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CadastrarRecebiveisRequest true "Lote de recebíveis"
// @Success      201  {array}  dto.RecebivelResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/recebiveis [post]
func (h *RecebiveisHandler) Cadastrar(c *gin.Context) {
	var req dto.CadastrarRecebiveisRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cadastrar(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Avaliar godoc
// @Summary      Avaliar recebível
// @Description  Move um recebível "enviado" para apto_antecipacao ou recusado.
// @Tags         recebiveis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID do recebível"
// @Param        body body dto.AvaliarRecebivelRequest true "Resultado da avaliação"
// @Success      200  {object} dto.RecebivelResponse
// @Failure      409  {object} apierror.TransicaoInvalida
// @Router       /v1/recebiveis/{id}/avaliacao [post]
func (h *RecebiveisHandler) Avaliar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.AvaliarRecebivelRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Avaliar(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar recebíveis
// @Description  Retorna lista paginada de recebíveis filtrada por obra, construtora e status.
// @Tags         recebiveis
// @Produce      json
// @Security     BearerAuth
// @Param        obra_id        query string false "UUID da obra"
// @Param        construtora_id query string false "UUID da construtora"
// @Param        status         query string false "enviado | apto_antecipacao | recusado | antecipado | pago"
// @Param        page           query int    false "Página (default 1)"
// @Param        limit          query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.RecebivelListResponse
// @Router       /v1/recebiveis [get]
func (h *RecebiveisHandler) Listar(c *gin.Context) {
	var filter dto.RecebivelFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar godoc
// @Summary      Buscar recebível
// @Tags         recebiveis
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do recebível"
// @Success      200 {object} dto.RecebivelResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/recebiveis/{id} [get]
func (h *RecebiveisHandler) Buscar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Buscar(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarPago godoc
// @Summary      Registrar pagamento do recebível
// @Description  Marca um recebível antecipado como pago pelo sacado.
// @Tags         recebiveis
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do recebível"
// @Success      200 {object} dto.RecebivelResponse
// @Failure      409 {object} apierror.TransicaoInvalida
// @Router       /v1/recebiveis/{id}/pagamento [post]
func (h *RecebiveisHandler) MarcarPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.MarcarPago(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
