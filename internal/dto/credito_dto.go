package dto

import "github.com/shopspring/decimal"

// CriarLinhaCreditoRequest creates (and activates) a credit line for a
// construtora. Any previously active line is deactivated in the same
// transaction.
type CriarLinhaCreditoRequest struct {
	ConstrutoraID      string          `json:"construtora_id"       validate:"required,uuid"`
	TaxaAte180         decimal.Decimal `json:"taxa_ate_180"         validate:"required"`
	TaxaAte360         decimal.Decimal `json:"taxa_ate_360"         validate:"required"`
	TaxaAte720         decimal.Decimal `json:"taxa_ate_720"         validate:"required"`
	TaxaLongoPrazo     decimal.Decimal `json:"taxa_longo_prazo"     validate:"required"`
	TarifaPorRecebivel decimal.Decimal `json:"tarifa_por_recebivel" validate:"min=0"`
	LimiteCredito      decimal.Decimal `json:"limite_credito"       validate:"required"`
	LimiteDiasOperacao int             `json:"limite_dias_operacao" validate:"required,min=1"`
}

type LinhaCreditoResponse struct {
	ID                 string          `json:"id"`
	ConstrutoraID      string          `json:"construtora_id"`
	TaxaAte180         decimal.Decimal `json:"taxa_ate_180"`
	TaxaAte360         decimal.Decimal `json:"taxa_ate_360"`
	TaxaAte720         decimal.Decimal `json:"taxa_ate_720"`
	TaxaLongoPrazo     decimal.Decimal `json:"taxa_longo_prazo"`
	TarifaPorRecebivel decimal.Decimal `json:"tarifa_por_recebivel"`
	LimiteCredito      decimal.Decimal `json:"limite_credito"`
	CreditoConsumido   decimal.Decimal `json:"credito_consumido"`
	CreditoDisponivel  decimal.Decimal `json:"credito_disponivel"`
	LimiteDiasOperacao int             `json:"limite_dias_operacao"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at"`
}
