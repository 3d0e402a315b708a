package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BoletoCriado    = "criado"
	BoletoEmitido   = "emitido"
	BoletoCancelado = "cancelado"
)

const (
	PagamentoNaoAplicavel = "nao_aplicavel"
	PagamentoAberto       = "aberto"
	PagamentoPago         = "pago"
	PagamentoVencido      = "vencido"
)

// Boleto is the billing instrument issued against a RecebivelCobranca
// (1:1, optional). When an index is applied, ValorCorrigido holds
// valor_face × (1 + percentual_correcao/100) rounded half-up to 2 decimals.
type Boleto struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Uniqueness is partial (cancelados excluded) so a replacement can be
	// created after cancellation — see idx_boletos_cobranca_vigente in
	// infra.applySchemaPatches.
	RecebivelCobrancaID uuid.UUID `gorm:"type:uuid;index;not null"`

	ValorFace          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	IndiceID           *uuid.UUID      `gorm:"type:uuid;index"`
	PercentualCorrecao decimal.Decimal `gorm:"type:decimal(10,6);not null;default:0"`
	ValorCorrigido     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Vencimento         time.Time       `gorm:"not null"`

	StatusEmissao   string `gorm:"not null;default:'criado'"`
	StatusPagamento string `gorm:"not null;default:'nao_aplicavel'"`

	// Dados devolvidos pelo gateway bancário após a emissão.
	NossoNumero    *string
	LinhaDigitavel *string
	PDFPath        *string

	// Emission retry bookkeeping (see worker.StartRetryCron).
	TentativasEmissao  int `gorm:"not null;default:0"`
	ProximaTentativaEm *time.Time
	UltimoErro         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Boleto) TableName() string { return "boletos" }

// NormalizarStatusPagamento forces the payment status to "nao_aplicavel"
// while the emission status is criado or cancelado. Every write path goes
// through this instead of scattering the conditional at call sites.
func (b *Boleto) NormalizarStatusPagamento() {
	switch b.StatusEmissao {
	case BoletoCriado, BoletoCancelado:
		b.StatusPagamento = PagamentoNaoAplicavel
	case BoletoEmitido:
		if b.StatusPagamento == PagamentoNaoAplicavel {
			b.StatusPagamento = PagamentoAberto
		}
	}
}
