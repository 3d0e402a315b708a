package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel not-found errors. Handlers map these to 404.
var (
	ErrLinhaNaoEncontrada       = errors.New("nenhuma linha de crédito ativa para a construtora")
	ErrAntecipacaoNaoEncontrada = errors.New("antecipação não encontrada")
	ErrParcelaNaoEncontrada     = errors.New("parcela não encontrada")
	ErrRecebivelNaoEncontrado   = errors.New("recebível não encontrado")
	ErrBoletoNaoEncontrado      = errors.New("boleto não encontrado")
	ErrIndiceNaoEncontrado      = errors.New("índice não encontrado")
)

// CreditoInsuficienteError is a business refusal, not a failure: it carries
// both operands so the operator sees exactly how much room is left.
type CreditoInsuficienteError struct {
	Disponivel decimal.Decimal
	Solicitado decimal.Decimal
}

func (e *CreditoInsuficienteError) Error() string {
	return fmt.Sprintf("crédito insuficiente: disponível %s, solicitado %s",
		e.Disponivel.StringFixed(2), e.Solicitado.StringFixed(2))
}

// TransicaoInvalidaError reports a state-machine violation with both states.
type TransicaoInvalidaError struct {
	De   string
	Para string
}

func (e *TransicaoInvalidaError) Error() string {
	return fmt.Sprintf("transição inválida: %s → %s", e.De, e.Para)
}

// ConflitoError reports a uniqueness violation (e.g. a receivable already
// attached as cobrança elsewhere).
type ConflitoError struct {
	Recurso string
	Detalhe string
}

func (e *ConflitoError) Error() string {
	return fmt.Sprintf("conflito em %s: %s", e.Recurso, e.Detalhe)
}

// ValidacaoError is a malformed-input refusal raised below the HTTP binding
// layer (e.g. pricing a receivable beyond the operation window).
type ValidacaoError struct {
	Detalhe string
}

func (e *ValidacaoError) Error() string { return e.Detalhe }
