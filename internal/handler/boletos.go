package handler

import (
	"net/http"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoletosHandler struct{ svc service.BoletoService }

func NewBoletosHandler(svc service.BoletoService) *BoletosHandler {
	return &BoletosHandler{svc: svc}
}

// Criar godoc
// @Summary      Criar boleto
// @Description  Cria o boleto de um recebível de cobrança. Com índice informado, o valor de face é corrigido pela variação acumulada até o mês do novo vencimento.
// @Tags         boletos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarBoletoRequest true "Dados do boleto"
// @Success      201  {object} dto.BoletoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/boletos [post]
func (h *BoletosHandler) Criar(c *gin.Context) {
	var req dto.CriarBoletoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Emitir godoc
// @Summary      Emitir boleto
// @Description  Enfileira o registro do boleto no gateway bancário. A emissão é assíncrona; consulte o boleto até status_emissao mudar.
// @Tags         boletos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do boleto"
// @Success      202 {object} dto.BoletoResponse
// @Failure      409 {object} apierror.TransicaoInvalida
// @Router       /v1/boletos/{id}/emissao [post]
func (h *BoletosHandler) Emitir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Emitir(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Cancelar godoc
// @Summary      Cancelar boleto
// @Tags         boletos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do boleto"
// @Success      200 {object} dto.BoletoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/boletos/{id}/cancelamento [post]
func (h *BoletosHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPagamento godoc
// @Summary      Registrar pagamento do boleto
// @Description  Registra o status de pagamento informado pelo banco (pago, vencido ou aberto). Somente boletos emitidos.
// @Tags         boletos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                              true "UUID do boleto"
// @Param        body body dto.RegistrarPagamentoBoletoRequest true "Status do pagamento"
// @Success      200  {object} dto.BoletoResponse
// @Failure      409  {object} apierror.TransicaoInvalida
// @Router       /v1/boletos/{id}/pagamento [post]
func (h *BoletosHandler) RegistrarPagamento(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RegistrarPagamentoBoletoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPagamento(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar godoc
// @Summary      Buscar boleto
// @Tags         boletos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do boleto"
// @Success      200 {object} dto.BoletoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/boletos/{id} [get]
func (h *BoletosHandler) Buscar(c *gin.Context) {
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

// PDF godoc
// @Summary      Baixar PDF do boleto
// @Tags         boletos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID do boleto"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/boletos/{id}/pdf [get]
func (h *BoletosHandler) PDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	path, err := h.svc.PDFPath(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.FileAttachment(path, "boleto_"+id.String()+".pdf")
}
