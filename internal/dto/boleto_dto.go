package dto

import "github.com/shopspring/decimal"

// CriarBoletoRequest creates the billing instrument for a recebivel de
// cobrança. When IndiceID is present the face value is index-corrected from
// the receivable's original due month up to the novo vencimento month.
type CriarBoletoRequest struct {
	RecebivelCobrancaID string  `json:"recebivel_cobranca_id" validate:"required,uuid"`
	IndiceID            *string `json:"indice_id"             validate:"omitempty,uuid"`
}

type RegistrarPagamentoBoletoRequest struct {
	Status string `json:"status" validate:"required,oneof=pago vencido aberto"`
}

type CorrecaoBoletoResponse struct {
	IndiceID       string          `json:"indice_id"`
	MesBase        string          `json:"mes_base"`
	MesAlvo        string          `json:"mes_alvo"`
	Percentual     decimal.Decimal `json:"percentual"`
	MesesAplicados int             `json:"meses_aplicados"`
}

type BoletoResponse struct {
	ID                  string                  `json:"id"`
	RecebivelCobrancaID string                  `json:"recebivel_cobranca_id"`
	ValorFace           decimal.Decimal         `json:"valor_face"`
	ValorCorrigido      decimal.Decimal         `json:"valor_corrigido"`
	Vencimento          string                  `json:"vencimento"`
	StatusEmissao       string                  `json:"status_emissao"`
	StatusPagamento     string                  `json:"status_pagamento"`
	NossoNumero         *string                 `json:"nosso_numero,omitempty"`
	LinhaDigitavel      *string                 `json:"linha_digitavel,omitempty"`
	PDFUrl              *string                 `json:"pdf_url,omitempty"`
	Correcao            *CorrecaoBoletoResponse `json:"correcao,omitempty"`
	CreatedAt           string                  `json:"created_at"`
}
