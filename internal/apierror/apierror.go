// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// CreditoInsuficiente is the structured payload for credit-limit refusals.
// Operators act on these numbers, so both operands are always included.
type CreditoInsuficiente struct {
	Detail     string `json:"detail"`
	Disponivel string `json:"credito_disponivel"`
	Solicitado string `json:"valor_solicitado"`
}

// TransicaoInvalida carries the current and requested status of a rejected
// state-machine transition.
type TransicaoInvalida struct {
	Detail      string `json:"detail"`
	StatusAtual string `json:"status_atual"`
	StatusAlvo  string `json:"status_alvo"`
}
