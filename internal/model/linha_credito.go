package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LinhaAtiva   = "ativa"
	LinhaInativa = "inativa"
)

// LinhaCredito is a construtora's approved ceiling for outstanding anticipated
// value, plus the tiered rate table used to price anticipations against it.
//
// At most one line per construtora may be "ativa" at any time — enforced by a
// partial unique index on (construtora_id) WHERE status='ativa' (see
// infra.applySchemaPatches) in addition to the transactional activate path.
type LinhaCredito struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConstrutoraID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Taxas de desconto (% ao mês) por faixa de prazo até o vencimento.
	TaxaAte180     decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaAte360     decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaAte720     decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaLongoPrazo decimal.Decimal `gorm:"type:decimal(6,3);not null"`

	// TarifaPorRecebivel is the flat fee charged per anticipated receivable.
	TarifaPorRecebivel decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	LimiteCredito    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreditoConsumido decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	// LimiteDiasOperacao is the maximum days-to-due a receivable may have to
	// be eligible for anticipation under this line.
	LimiteDiasOperacao int    `gorm:"not null;default:360"`
	Status             string `gorm:"not null;default:'ativa'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreditoDisponivel is derived: limite_credito - credito_consumido.
func (l *LinhaCredito) CreditoDisponivel() decimal.Decimal {
	return l.LimiteCredito.Sub(l.CreditoConsumido)
}

func (LinhaCredito) TableName() string { return "linhas_credito" }
