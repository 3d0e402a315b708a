package handler

import (
	"net/http"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreditoHandler struct{ svc service.CreditoService }

func NewCreditoHandler(svc service.CreditoService) *CreditoHandler { return &CreditoHandler{svc: svc} }

// CriarLinha godoc
// @Summary      Criar linha de crédito
// @Description  Cria uma nova linha de crédito ativa para a construtora; a linha ativa anterior é desativada na mesma transação.
// @Tags         credito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarLinhaCreditoRequest true "Parâmetros da linha"
// @Success      201  {object} dto.LinhaCreditoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/linhas-credito [post]
func (h *CreditoHandler) CriarLinha(c *gin.Context) {
	var req dto.CriarLinhaCreditoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarLinha(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AtivarLinha godoc
// @Summary      Ativar linha de crédito
// @Description  Reativa uma linha inativa, desativando a linha ativa atual da construtora.
// @Tags         credito
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da linha"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/linhas-credito/{id}/ativar [post]
func (h *CreditoHandler) AtivarLinha(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.AtivarLinha(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LinhaAtiva godoc
// @Summary      Linha de crédito ativa
// @Description  Retorna a linha ativa da construtora com o crédito disponível corrente.
// @Tags         credito
// @Produce      json
// @Security     BearerAuth
// @Param        construtora_id path string true "UUID da construtora"
// @Success      200 {object} dto.LinhaCreditoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/construtoras/{construtora_id}/linha-ativa [get]
func (h *CreditoHandler) LinhaAtiva(c *gin.Context) {
	construtoraID, err := uuid.Parse(c.Param("construtora_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	linha, err := h.svc.LinhaAtiva(c.Request.Context(), construtoraID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LinhaCreditoResponse{
		ID:                 linha.ID.String(),
		ConstrutoraID:      linha.ConstrutoraID.String(),
		TaxaAte180:         linha.TaxaAte180,
		TaxaAte360:         linha.TaxaAte360,
		TaxaAte720:         linha.TaxaAte720,
		TaxaLongoPrazo:     linha.TaxaLongoPrazo,
		TarifaPorRecebivel: linha.TarifaPorRecebivel,
		LimiteCredito:      linha.LimiteCredito,
		CreditoConsumido:   linha.CreditoConsumido,
		CreditoDisponivel:  linha.CreditoDisponivel(),
		LimiteDiasOperacao: linha.LimiteDiasOperacao,
		Status:             linha.Status,
		CreatedAt:          linha.CreatedAt.Format(time.RFC3339),
	})
}

// ListarLinhas godoc
// @Summary      Listar linhas de crédito
// @Description  Lista todas as linhas (ativas e inativas) da construtora.
// @Tags         credito
// @Produce      json
// @Security     BearerAuth
// @Param        construtora_id path string true "UUID da construtora"
// @Success      200 {array} dto.LinhaCreditoResponse
// @Router       /v1/construtoras/{construtora_id}/linhas-credito [get]
func (h *CreditoHandler) ListarLinhas(c *gin.Context) {
	construtoraID, err := uuid.Parse(c.Param("construtora_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListarPorConstrutora(c.Request.Context(), construtoraID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
