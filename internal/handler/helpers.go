package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/apierror"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Business refusals keep their structured payloads; anything unrecognized
// is logged by the error middleware and hidden behind a generic 500.
func writeServiceError(c *gin.Context, err error) {
	var (
		credErr  *service.CreditoInsuficienteError
		transErr *service.TransicaoInvalidaError
		confErr  *service.ConflitoError
		valErr   *service.ValidacaoError
	)

	switch {
	case errors.As(err, &credErr):
		c.JSON(http.StatusUnprocessableEntity, &apierror.CreditoInsuficiente{
			Detail:     credErr.Error(),
			Disponivel: credErr.Disponivel.StringFixed(2),
			Solicitado: credErr.Solicitado.StringFixed(2),
		})
	case errors.As(err, &transErr):
		c.JSON(http.StatusConflict, &apierror.TransicaoInvalida{
			Detail:      transErr.Error(),
			StatusAtual: transErr.De,
			StatusAlvo:  transErr.Para,
		})
	case errors.As(err, &confErr):
		c.JSON(http.StatusConflict, apierror.New(confErr.Error()))
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, apierror.New(valErr.Error()))
	case errors.Is(err, service.ErrLinhaNaoEncontrada),
		errors.Is(err, service.ErrAntecipacaoNaoEncontrada),
		errors.Is(err, service.ErrParcelaNaoEncontrada),
		errors.Is(err, service.ErrRecebivelNaoEncontrado),
		errors.Is(err, service.ErrBoletoNaoEncontrado),
		errors.Is(err, service.ErrIndiceNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
