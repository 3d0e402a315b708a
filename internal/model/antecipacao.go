package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Anticipation request lifecycle:
//
//	solicitada → aprovada | recusada
//	aprovada   → concluida | recusada
//
// recusada and concluida are terminal. Transition enforcement lives in
// service.AntecipacaoService; the model only names the states.
const (
	AntecipacaoSolicitada = "solicitada"
	AntecipacaoAprovada   = "aprovada"
	AntecipacaoRecusada   = "recusada"
	AntecipacaoConcluida  = "concluida"
)

// Antecipacao is a priced request to anticipate a set of receivables.
// The four tier rates and the flat fee are snapshotted at pricing time so a
// later rate-table change never reprices a submitted request.
type Antecipacao struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConstrutoraID uuid.UUID `gorm:"type:uuid;index;not null"`
	ObraID        uuid.UUID `gorm:"type:uuid;index;not null"`

	ValorTotal           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ValorLiquido         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	QuantidadeRecebiveis int             `gorm:"not null"`

	// Snapshot das taxas vigentes na precificação.
	TaxaAte180         decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaAte360         decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaAte720         decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TaxaLongoPrazo     decimal.Decimal `gorm:"type:decimal(6,3);not null"`
	TarifaPorRecebivel decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Status string `gorm:"not null;default:'solicitada';index"`

	Recebiveis []AntecipacaoRecebivel `gorm:"foreignKey:AntecipacaoID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Antecipacao) TableName() string { return "antecipacoes" }

// AntecipacaoRecebivel joins an Antecipacao to one of its receivables,
// freezing the amount and due date seen at pricing time.
type AntecipacaoRecebivel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AntecipacaoID uuid.UUID `gorm:"type:uuid;index;not null"`
	RecebivelID   uuid.UUID `gorm:"type:uuid;index;not null"`

	Valor      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Vencimento time.Time       `gorm:"not null"`

	Recebivel *Recebivel `gorm:"foreignKey:RecebivelID"`

	CreatedAt time.Time
}

func (AntecipacaoRecebivel) TableName() string { return "antecipacao_recebiveis" }
