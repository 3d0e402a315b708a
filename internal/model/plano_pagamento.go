package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanoPagamento is the repayment plan of an approved anticipation (1:1).
// The amortization schedule itself is built by the financial desk and
// persisted as-is; this system reconciles receivables against it.
type PlanoPagamento struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AntecipacaoID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ObraID        uuid.UUID `gorm:"type:uuid;index;not null"`

	// DiaCobranca is the day of month the parcelas fall due.
	DiaCobranca      int             `gorm:"not null"`
	TetoFundoReserva decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Parcelas []Parcela `gorm:"foreignKey:PlanoID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanoPagamento) TableName() string { return "planos_pagamento" }

// Parcela is one scheduled repayment slice (PMT) of the plan.
type Parcela struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlanoID uuid.UUID `gorm:"type:uuid;index;not null"`

	Numero     int       `gorm:"not null"`
	Vencimento time.Time `gorm:"not null"`

	TotalRecebiveis decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PMT             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SaldoDevedor    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FundoReserva    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Devolucao       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Parcela) TableName() string { return "parcelas" }
