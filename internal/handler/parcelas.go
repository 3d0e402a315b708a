package handler

import (
	"net/http"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParcelasHandler struct{ svc service.ParcelaService }

func NewParcelasHandler(svc service.ParcelaService) *ParcelasHandler {
	return &ParcelasHandler{svc: svc}
}

// CriarPlano godoc
// @Summary      Criar plano de pagamento
// @Description  Persiste o cronograma de amortização construído pela mesa financeira para uma antecipação aprovada.
// @Tags         parcelas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarPlanoRequest true "Plano e parcelas"
// @Success      201  {object} dto.PlanoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/planos-pagamento [post]
func (h *ParcelasHandler) CriarPlano(c *gin.Context) {
	var req dto.CriarPlanoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarPlano(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// BuscarPlano godoc
// @Summary      Buscar plano de pagamento
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do plano"
// @Success      200 {object} dto.PlanoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/planos-pagamento/{id} [get]
func (h *ParcelasHandler) BuscarPlano(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.BuscarPlano(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanoDaAntecipacao godoc
// @Summary      Plano de pagamento da antecipação
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da antecipação"
// @Success      200 {object} dto.PlanoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/antecipacoes/{id}/plano-pagamento [get]
func (h *ParcelasHandler) PlanoDaAntecipacao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.PlanoDaAntecipacao(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Fontes godoc
// @Summary      Fontes da parcela
// @Description  Lista os recebíveis que amortizam a parcela (pmt) e os instrumentos de cobrança substitutos.
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da parcela"
// @Success      200 {object} dto.FontesParcelaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/parcelas/{id}/fontes [get]
func (h *ParcelasHandler) Fontes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.FontesDaParcela(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Candidatos godoc
// @Summary      Candidatos a cobrança
// @Description  Lista os recebíveis da obra elegíveis para vínculo de cobrança nesta parcela.
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da parcela"
// @Success      200 {array} dto.RecebivelResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/parcelas/{id}/candidatos-cobranca [get]
func (h *ParcelasHandler) Candidatos(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.CandidatosCobranca(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VincularCobranca godoc
// @Summary      Vincular recebíveis de cobrança
// @Description  Vincula recebíveis como instrumentos de cobrança da parcela. Lote com sucesso parcial: conflitos de unicidade vão para "rejeitados".
// @Tags         parcelas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                      true "UUID da parcela"
// @Param        body body dto.VincularCobrancaRequest true "Recebíveis a vincular"
// @Success      200  {object} dto.VincularCobrancaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/parcelas/{id}/cobrancas [post]
func (h *ParcelasHandler) VincularCobranca(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.VincularCobrancaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VincularCobranca(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesvincularCobranca godoc
// @Summary      Desvincular recebível de cobrança
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string true "UUID da parcela"
// @Param        vinculo_id path string true "UUID do vínculo"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/parcelas/{id}/cobrancas/{vinculo_id} [delete]
func (h *ParcelasHandler) DesvincularCobranca(c *gin.Context) {
	parcelaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	vinculoID, err := uuid.Parse(c.Param("vinculo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.DesvincularCobranca(c.Request.Context(), parcelaID, vinculoID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Resumo godoc
// @Summary      Resumo de conciliação da parcela
// @Description  Compara o total de cobranças vinculadas com o PMT. Informativo: diferenças não bloqueiam operações.
// @Tags         parcelas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da parcela"
// @Success      200 {object} dto.ResumoConciliacaoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/parcelas/{id}/resumo-conciliacao [get]
func (h *ParcelasHandler) Resumo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ResumoConciliacao(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
