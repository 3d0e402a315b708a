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

type IndicesHandler struct{ svc service.IndiceService }

func NewIndicesHandler(svc service.IndiceService) *IndicesHandler {
	return &IndicesHandler{svc: svc}
}

// Criar godoc
// @Summary      Criar índice econômico
// @Tags         indices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarIndiceRequest true "Nome e sigla do índice"
// @Success      201  {object} dto.IndiceResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/indices [post]
func (h *IndicesHandler) Criar(c *gin.Context) {
	var req dto.CriarIndiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarIndice(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar índices
// @Tags         indices
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.IndiceResponse
// @Router       /v1/indices [get]
func (h *IndicesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarIndices(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAtualizacao godoc
// @Summary      Registrar atualização mensal
// @Description  Registra o percentual de um mês de referência. Único por índice e mês.
// @Tags         indices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                          true "UUID do índice"
// @Param        body body dto.RegistrarAtualizacaoRequest true "Mês e percentual"
// @Success      201
// @Failure      409 {object} apierror.APIError
// @Router       /v1/indices/{id}/atualizacoes [post]
func (h *IndicesHandler) RegistrarAtualizacao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.RegistrarAtualizacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegistrarAtualizacao(c.Request.Context(), id, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Correcao godoc
// @Summary      Correção acumulada
// @Description  Composição multiplicativa das atualizações entre dois meses de referência (início exclusivo, fim inclusivo). Meses sem atualização são ignorados.
// @Tags         indices
// @Produce      json
// @Security     BearerAuth
// @Param        id         path  string true "UUID do índice"
// @Param        mes_inicio query string true "Mês base (YYYY-MM)"
// @Param        mes_fim    query string true "Mês alvo (YYYY-MM)"
// @Success      200 {object} dto.CorrecaoAcumuladaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/indices/{id}/correcao [get]
func (h *IndicesHandler) Correcao(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	inicio, err := time.Parse("2006-01", c.Query("mes_inicio"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("mes_inicio inválido (YYYY-MM)"))
		return
	}
	fim, err := time.Parse("2006-01", c.Query("mes_fim"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("mes_fim inválido (YYYY-MM)"))
		return
	}

	resp, err := h.svc.CorrecaoAcumulada(c.Request.Context(), id, inicio, fim)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
