package dto

import "github.com/shopspring/decimal"

// SimularAntecipacaoRequest prices a candidate set of receivables without
// creating anything.
type SimularAntecipacaoRequest struct {
	ConstrutoraID string   `json:"construtora_id" validate:"required,uuid"`
	RecebivelIDs  []string `json:"recebivel_ids"  validate:"required,min=1,dive,uuid"`
	// DataAvaliacao defaults to today when omitted (YYYY-MM-DD).
	DataAvaliacao *string `json:"data_avaliacao" validate:"omitempty,datetime=2006-01-02"`
}

// SolicitarAntecipacaoRequest creates the anticipation request proper.
type SolicitarAntecipacaoRequest struct {
	ConstrutoraID string   `json:"construtora_id" validate:"required,uuid"`
	ObraID        string   `json:"obra_id"        validate:"required,uuid"`
	RecebivelIDs  []string `json:"recebivel_ids"  validate:"required,min=1,dive,uuid"`
}

// TransicaoAntecipacaoRequest asks for a state-machine transition.
type TransicaoAntecipacaoRequest struct {
	Status string `json:"status" validate:"required,oneof=aprovada recusada concluida"`
}

// RecebivelPrecificado is the per-receivable audit breakdown of a pricing run.
type RecebivelPrecificado struct {
	RecebivelID       string          `json:"recebivel_id"`
	Valor             decimal.Decimal `json:"valor"`
	Vencimento        string          `json:"vencimento"`
	DiasAteVencimento int             `json:"dias_ate_vencimento"`
	TaxaAplicada      decimal.Decimal `json:"taxa_aplicada"`
	Desconto          decimal.Decimal `json:"desconto"`
	ValorLiquido      decimal.Decimal `json:"valor_liquido"`
}

type PrecificacaoResponse struct {
	ValorTotal           decimal.Decimal        `json:"valor_total"`
	ValorLiquido         decimal.Decimal        `json:"valor_liquido"`
	QuantidadeRecebiveis int                    `json:"quantidade_recebiveis"`
	Recebiveis           []RecebivelPrecificado `json:"recebiveis"`
}

type AntecipacaoFilter struct {
	ConstrutoraID string `form:"construtora_id" validate:"omitempty,uuid"`
	Status        string `form:"status"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AntecipacaoResponse struct {
	ID                   string          `json:"id"`
	ConstrutoraID        string          `json:"construtora_id"`
	ObraID               string          `json:"obra_id"`
	ValorTotal           decimal.Decimal `json:"valor_total"`
	ValorLiquido         decimal.Decimal `json:"valor_liquido"`
	QuantidadeRecebiveis int             `json:"quantidade_recebiveis"`
	TaxaAte180           decimal.Decimal `json:"taxa_ate_180"`
	TaxaAte360           decimal.Decimal `json:"taxa_ate_360"`
	TaxaAte720           decimal.Decimal `json:"taxa_ate_720"`
	TaxaLongoPrazo       decimal.Decimal `json:"taxa_longo_prazo"`
	TarifaPorRecebivel   decimal.Decimal `json:"tarifa_por_recebivel"`
	Status               string          `json:"status"`
	CreatedAt            string          `json:"created_at"`
}

type AntecipacaoListResponse struct {
	Data  []AntecipacaoResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
