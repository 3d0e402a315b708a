package repository

import (
	"context"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinhaCreditoRepository is the data access contract for the credit ledger.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type LinhaCreditoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.LinhaCredito, error)
	// FindAtiva returns the single active line of a construtora.
	FindAtiva(ctx context.Context, construtoraID uuid.UUID) (*model.LinhaCredito, error)
	ListByConstrutora(ctx context.Context, construtoraID uuid.UUID) ([]model.LinhaCredito, error)

	// CriarAtivandoTx deactivates any active line of the construtora and
	// creates the new one as ativa — both inside the given transaction.
	CriarAtivandoTx(tx *gorm.DB, linha *model.LinhaCredito) error

	// AtivarTx flips an existing line to ativa, deactivating siblings, inside
	// the given transaction.
	AtivarTx(tx *gorm.DB, id uuid.UUID) error

	// ConsumirTx atomically adds valor to credito_consumido of the active
	// line, guarded by the limit in the same UPDATE:
	//
	//   SET credito_consumido = credito_consumido + v
	//   WHERE status='ativa' AND credito_consumido + v <= limite_credito
	//
	// Returns the number of rows updated: 0 means insufficient credit (or no
	// active line) and nothing was written.
	ConsumirTx(tx *gorm.DB, construtoraID uuid.UUID, valor decimal.Decimal) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type linhaCreditoRepo struct{ db *gorm.DB }

func NewLinhaCreditoRepository(db *gorm.DB) LinhaCreditoRepository {
	return &linhaCreditoRepo{db: db}
}

func (r *linhaCreditoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LinhaCredito, error) {
	var l model.LinhaCredito
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *linhaCreditoRepo) FindAtiva(ctx context.Context, construtoraID uuid.UUID) (*model.LinhaCredito, error) {
	var l model.LinhaCredito
	err := r.db.WithContext(ctx).
		Where("construtora_id = ? AND status = ?", construtoraID, model.LinhaAtiva).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *linhaCreditoRepo) ListByConstrutora(ctx context.Context, construtoraID uuid.UUID) ([]model.LinhaCredito, error) {
	var linhas []model.LinhaCredito
	err := r.db.WithContext(ctx).
		Where("construtora_id = ?", construtoraID).
		Order("created_at DESC").
		Find(&linhas).Error
	return linhas, err
}

func (r *linhaCreditoRepo) CriarAtivandoTx(tx *gorm.DB, linha *model.LinhaCredito) error {
	if err := tx.Model(&model.LinhaCredito{}).
		Where("construtora_id = ? AND status = ?", linha.ConstrutoraID, model.LinhaAtiva).
		Update("status", model.LinhaInativa).Error; err != nil {
		return err
	}
	linha.Status = model.LinhaAtiva
	return tx.Create(linha).Error
}

func (r *linhaCreditoRepo) AtivarTx(tx *gorm.DB, id uuid.UUID) error {
	var linha model.LinhaCredito
	if err := tx.First(&linha, "id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.LinhaCredito{}).
		Where("construtora_id = ? AND status = ? AND id <> ?", linha.ConstrutoraID, model.LinhaAtiva, id).
		Update("status", model.LinhaInativa).Error; err != nil {
		return err
	}
	return tx.Model(&model.LinhaCredito{}).
		Where("id = ?", id).
		Update("status", model.LinhaAtiva).Error
}

func (r *linhaCreditoRepo) ConsumirTx(tx *gorm.DB, construtoraID uuid.UUID, valor decimal.Decimal) (int64, error) {
	res := tx.Model(&model.LinhaCredito{}).
		Where("construtora_id = ? AND status = ? AND credito_consumido + ? <= limite_credito",
			construtoraID, model.LinhaAtiva, valor).
		Update("credito_consumido", gorm.Expr("credito_consumido + ?", valor))
	return res.RowsAffected, res.Error
}

func (r *linhaCreditoRepo) DB() *gorm.DB { return r.db }
