package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Indice is a named economic index (INCC, IGP-M, …) with monthly updates.
type Indice struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome  string    `gorm:"not null"`
	Sigla string    `gorm:"uniqueIndex;not null"`

	Atualizacoes []AtualizacaoIndice `gorm:"foreignKey:IndiceID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Indice) TableName() string { return "indices" }

// AtualizacaoIndice is one monthly adjustment percentage, unique per
// (indice, mes_referencia). MesReferencia is stored normalized to the first
// day of the month, UTC.
type AtualizacaoIndice struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IndiceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_indice_mes"`

	MesReferencia time.Time       `gorm:"not null;uniqueIndex:idx_indice_mes"`
	Percentual    decimal.Decimal `gorm:"type:decimal(8,4);not null"`

	CreatedAt time.Time
}

func (AtualizacaoIndice) TableName() string { return "atualizacoes_indice" }

// NormalizarMes truncates t to the first day of its month in UTC — the
// canonical representation for mes_referencia comparisons.
func NormalizarMes(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
