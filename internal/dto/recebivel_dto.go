package dto

import "github.com/shopspring/decimal"

type RecebivelRequest struct {
	ObraID          string          `json:"obra_id"          validate:"required,uuid"`
	Sacado          string          `json:"sacado"           validate:"required,min=3"`
	SacadoDocumento string          `json:"sacado_documento" validate:"required"`
	Valor           decimal.Decimal `json:"valor"            validate:"required"`
	Vencimento      string          `json:"vencimento"       validate:"required,datetime=2006-01-02"`
}

// CadastrarRecebiveisRequest submits a batch of receivables (status enviado).
type CadastrarRecebiveisRequest struct {
	ConstrutoraID string             `json:"construtora_id" validate:"required,uuid"`
	Recebiveis    []RecebivelRequest `json:"recebiveis"     validate:"required,min=1,dive"`
}

// AvaliarRecebivelRequest moves a submitted receivable to apto_antecipacao
// or recusado.
type AvaliarRecebivelRequest struct {
	Aprovado bool    `json:"aprovado"`
	Motivo   *string `json:"motivo" validate:"omitempty,min=5"`
}

type RecebivelFilter struct {
	ObraID        string `form:"obra_id"        validate:"omitempty,uuid"`
	ConstrutoraID string `form:"construtora_id" validate:"omitempty,uuid"`
	Status        string `form:"status"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RecebivelResponse struct {
	ID              string          `json:"id"`
	ConstrutoraID   string          `json:"construtora_id"`
	ObraID          string          `json:"obra_id"`
	Sacado          string          `json:"sacado"`
	SacadoDocumento string          `json:"sacado_documento"`
	Valor           decimal.Decimal `json:"valor"`
	Vencimento      string          `json:"vencimento"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"created_at"`
}

type RecebivelListResponse struct {
	Data  []RecebivelResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
