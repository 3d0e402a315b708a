package dto

import "github.com/shopspring/decimal"

// ParcelaRequest is one row of an externally-built amortization schedule.
// pmt, saldo devedor, fundo de reserva and devolução arrive ready — this
// system persists and reconciles them, it does not compute the schedule.
type ParcelaRequest struct {
	Numero       int             `json:"numero"        validate:"required,min=1"`
	Vencimento   string          `json:"vencimento"    validate:"required,datetime=2006-01-02"`
	PMT          decimal.Decimal `json:"pmt"           validate:"required"`
	SaldoDevedor decimal.Decimal `json:"saldo_devedor" validate:"min=0"`
	FundoReserva decimal.Decimal `json:"fundo_reserva" validate:"min=0"`
	Devolucao    decimal.Decimal `json:"devolucao"     validate:"min=0"`
	// RecebivelIDs records which receivables originally amortize this parcela.
	RecebivelIDs []string `json:"recebivel_ids" validate:"omitempty,dive,uuid"`
}

type CriarPlanoRequest struct {
	AntecipacaoID    string           `json:"antecipacao_id"     validate:"required,uuid"`
	DiaCobranca      int              `json:"dia_cobranca"       validate:"required,min=1,max=28"`
	TetoFundoReserva decimal.Decimal  `json:"teto_fundo_reserva" validate:"min=0"`
	Parcelas         []ParcelaRequest `json:"parcelas"           validate:"required,min=1,dive"`
}

type ParcelaResponse struct {
	ID              string          `json:"id"`
	Numero          int             `json:"numero"`
	Vencimento      string          `json:"vencimento"`
	TotalRecebiveis decimal.Decimal `json:"total_recebiveis"`
	PMT             decimal.Decimal `json:"pmt"`
	SaldoDevedor    decimal.Decimal `json:"saldo_devedor"`
	FundoReserva    decimal.Decimal `json:"fundo_reserva"`
	Devolucao       decimal.Decimal `json:"devolucao"`
}

type PlanoResponse struct {
	ID               string            `json:"id"`
	AntecipacaoID    string            `json:"antecipacao_id"`
	ObraID           string            `json:"obra_id"`
	DiaCobranca      int               `json:"dia_cobranca"`
	TetoFundoReserva decimal.Decimal   `json:"teto_fundo_reserva"`
	Parcelas         []ParcelaResponse `json:"parcelas"`
}

// FonteParcela is one receivable backing a parcela, either as original
// amortization source (tipo=pmt) or as substituted instrument (tipo=cobranca).
type FonteParcela struct {
	VinculoID      string          `json:"vinculo_id"`
	Tipo           string          `json:"tipo"` // pmt | cobranca
	RecebivelID    string          `json:"recebivel_id"`
	Sacado         string          `json:"sacado"`
	Valor          decimal.Decimal `json:"valor"`
	Vencimento     string          `json:"vencimento"`
	NovoVencimento *string         `json:"novo_vencimento,omitempty"`
}

type FontesParcelaResponse struct {
	ParcelaID string         `json:"parcela_id"`
	Originais []FonteParcela `json:"recebiveis_pmt"`
	Cobrancas []FonteParcela `json:"recebiveis_cobranca"`
}

// VincularCobrancaRequest attaches billing receivables to a parcela.
type VincularCobrancaRequest struct {
	RecebivelIDs []string `json:"recebivel_ids" validate:"required,min=1,dive,uuid"`
	// NovoVencimento defaults to the parcela due date when omitted.
	NovoVencimento *string `json:"novo_vencimento" validate:"omitempty,datetime=2006-01-02"`
}

// VincularCobrancaResponse reports per-item results: the batch is not
// all-or-nothing — already-attached receivables land in Rejeitados while the
// rest are created.
type VincularCobrancaResponse struct {
	Criados    []FonteParcela `json:"criados"`
	Rejeitados []string       `json:"rejeitados"`
	Aviso      *string        `json:"aviso,omitempty"`
}

// ResumoConciliacaoResponse is advisory: attachment is never blocked when
// diferenca != 0.
type ResumoConciliacaoResponse struct {
	ParcelaID        string          `json:"parcela_id"`
	PMT              decimal.Decimal `json:"pmt"`
	TotalSelecionado decimal.Decimal `json:"total_selecionado"`
	Diferenca        decimal.Decimal `json:"diferenca"`
	FundoReserva     decimal.Decimal `json:"fundo_reserva"`
	TetoFundoReserva decimal.Decimal `json:"teto_fundo_reserva"`
}
