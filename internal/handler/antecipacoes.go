package handler

import (
	"net/http"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AntecipacoesHandler struct{ svc service.AntecipacaoService }

func NewAntecipacoesHandler(svc service.AntecipacaoService) *AntecipacoesHandler {
	return &AntecipacoesHandler{svc: svc}
}

// Simular godoc
// @Summary      Simular antecipação
// @Description  Precifica um conjunto de recebíveis contra a linha ativa, sem efeitos colaterais.
// @Tags         antecipacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SimularAntecipacaoRequest true "Recebíveis a precificar"
// @Success      200  {object} dto.PrecificacaoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/antecipacoes/simulacao [post]
func (h *AntecipacoesHandler) Simular(c *gin.Context) {
	var req dto.SimularAntecipacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Simular(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Solicitar godoc
// @Summary      Solicitar antecipação
// @Description  Cria a antecipação em status "solicitada" com as taxas vigentes congeladas.
// @Tags         antecipacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SolicitarAntecipacaoRequest true "Recebíveis da antecipação"
// @Success      201  {object} dto.AntecipacaoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/antecipacoes [post]
func (h *AntecipacoesHandler) Solicitar(c *gin.Context) {
	var req dto.SolicitarAntecipacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Solicitar(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Transicionar godoc
// @Summary      Transicionar antecipação
// @Description  Aplica uma transição da máquina de estados. A aprovação consome crédito e marca os recebíveis como antecipados atomicamente.
// @Tags         antecipacoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                          true "UUID da antecipação"
// @Param        body body dto.TransicaoAntecipacaoRequest true "Status alvo"
// @Success      200  {object} dto.AntecipacaoResponse
// @Failure      409  {object} apierror.TransicaoInvalida
// @Failure      422  {object} apierror.CreditoInsuficiente
// @Router       /v1/antecipacoes/{id}/status [post]
func (h *AntecipacoesHandler) Transicionar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.TransicaoAntecipacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), id, req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar godoc
// @Summary      Buscar antecipação
// @Tags         antecipacoes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da antecipação"
// @Success      200 {object} dto.AntecipacaoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/antecipacoes/{id} [get]
func (h *AntecipacoesHandler) Buscar(c *gin.Context) {
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

// Listar godoc
// @Summary      Listar antecipações
// @Tags         antecipacoes
// @Produce      json
// @Security     BearerAuth
// @Param        construtora_id query string false "UUID da construtora"
// @Param        status         query string false "solicitada | aprovada | recusada | concluida"
// @Param        page           query int    false "Página (default 1)"
// @Param        limit          query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.AntecipacaoListResponse
// @Router       /v1/antecipacoes [get]
func (h *AntecipacoesHandler) Listar(c *gin.Context) {
	var filter dto.AntecipacaoFilter
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
