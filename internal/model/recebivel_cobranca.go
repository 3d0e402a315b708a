package model

import (
	"time"

	"github.com/google/uuid"
)

// RecebivelPmt joins a Parcela to the receivables that originally back its
// amortization. Read-only provenance: once written it is never edited, even
// when substitutes are swapped in via RecebivelCobranca.
type RecebivelPmt struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParcelaID   uuid.UUID `gorm:"type:uuid;index;not null"`
	RecebivelID uuid.UUID `gorm:"type:uuid;index;not null"`

	Recebivel *Recebivel `gorm:"foreignKey:RecebivelID"`

	CreatedAt time.Time
}

func (RecebivelPmt) TableName() string { return "recebiveis_pmt" }

// RecebivelCobranca substitutes a receivable in as the collection instrument
// for a parcela, with its own due date. A receivable may back at most one
// cobranca at a time — the unique index on recebivel_id re-checks that at
// write time, not only when listing candidates.
type RecebivelCobranca struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParcelaID   uuid.UUID `gorm:"type:uuid;index;not null"`
	RecebivelID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	NovoVencimento time.Time `gorm:"not null"`

	Recebivel *Recebivel `gorm:"foreignKey:RecebivelID"`
	Boleto    *Boleto    `gorm:"foreignKey:RecebivelCobrancaID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RecebivelCobranca) TableName() string { return "recebiveis_cobranca" }
