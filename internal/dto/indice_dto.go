package dto

import "github.com/shopspring/decimal"

type CriarIndiceRequest struct {
	Nome  string `json:"nome"  validate:"required,min=3"`
	Sigla string `json:"sigla" validate:"required,min=2,max=10"`
}

// RegistrarAtualizacaoRequest records one monthly adjustment (unique per
// index and month).
type RegistrarAtualizacaoRequest struct {
	MesReferencia string          `json:"mes_referencia" validate:"required,datetime=2006-01"`
	Percentual    decimal.Decimal `json:"percentual"     validate:"required"`
}

type IndiceResponse struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Sigla string `json:"sigla"`
}

// MesCorrigido is one month of the compounding audit breakdown.
type MesCorrigido struct {
	MesReferencia string          `json:"mes_referencia"`
	Percentual    decimal.Decimal `json:"percentual"`
}

// CorrecaoAcumuladaResponse is the compound adjustment between two reference
// months (start exclusive, end inclusive). Months with no update simply do
// not appear in Meses.
type CorrecaoAcumuladaResponse struct {
	IndiceID       string          `json:"indice_id"`
	MesInicio      string          `json:"mes_inicio"`
	MesFim         string          `json:"mes_fim"`
	Fator          float64         `json:"fator"`
	Percentual     decimal.Decimal `json:"percentual"`
	MesesAplicados int             `json:"meses_aplicados"`
	Meses          []MesCorrigido  `json:"meses"`
}
