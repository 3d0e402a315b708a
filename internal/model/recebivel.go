package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receivable lifecycle. A receivable is never deleted, only re-statused.
const (
	RecebivelEnviado    = "enviado"
	RecebivelApto       = "apto_antecipacao"
	RecebivelRecusado   = "recusado"
	RecebivelAntecipado = "antecipado"
	RecebivelPago       = "pago"
)

// Recebivel is a buyer's (sacado) contractual obligation to pay a fixed
// amount to the construtora by a due date.
type Recebivel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConstrutoraID uuid.UUID `gorm:"type:uuid;index;not null"`
	ObraID        uuid.UUID `gorm:"type:uuid;index;not null"`

	Sacado          string `gorm:"not null"`
	SacadoDocumento string `gorm:"not null"` // CPF/CNPJ do comprador

	Valor      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Vencimento time.Time       `gorm:"not null;index"`
	Status     string          `gorm:"not null;default:'enviado';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Recebivel) TableName() string { return "recebiveis" }
