package repository

import (
	"context"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CobrancaRepository interface {
	// Create inserts one RecebivelCobranca. The unique index on recebivel_id
	// makes this the write-time uniqueness check: a duplicate attach returns
	// gorm.ErrDuplicatedKey.
	CreateTx(tx *gorm.DB, rc *model.RecebivelCobranca) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RecebivelCobranca, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	ListPmtByParcela(ctx context.Context, parcelaID uuid.UUID) ([]model.RecebivelPmt, error)
	ListCobrancaByParcela(ctx context.Context, parcelaID uuid.UUID) ([]model.RecebivelCobranca, error)

	DB() *gorm.DB
}

type cobrancaRepo struct{ db *gorm.DB }

func NewCobrancaRepository(db *gorm.DB) CobrancaRepository { return &cobrancaRepo{db: db} }

func (r *cobrancaRepo) CreateTx(tx *gorm.DB, rc *model.RecebivelCobranca) error {
	return tx.Create(rc).Error
}

func (r *cobrancaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecebivelCobranca, error) {
	var rc model.RecebivelCobranca
	err := r.db.WithContext(ctx).
		Preload("Recebivel").
		Preload("Boleto").
		First(&rc, "id = ?", id).Error
	return &rc, err
}

func (r *cobrancaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.RecebivelCobranca{}, "id = ?", id).Error
}

func (r *cobrancaRepo) ListPmtByParcela(ctx context.Context, parcelaID uuid.UUID) ([]model.RecebivelPmt, error) {
	var pmts []model.RecebivelPmt
	err := r.db.WithContext(ctx).
		Preload("Recebivel").
		Where("parcela_id = ?", parcelaID).
		Find(&pmts).Error
	return pmts, err
}

func (r *cobrancaRepo) ListCobrancaByParcela(ctx context.Context, parcelaID uuid.UUID) ([]model.RecebivelCobranca, error) {
	var rcs []model.RecebivelCobranca
	err := r.db.WithContext(ctx).
		Preload("Recebivel").
		Preload("Boleto").
		Where("parcela_id = ?", parcelaID).
		Find(&rcs).Error
	return rcs, err
}

func (r *cobrancaRepo) DB() *gorm.DB { return r.db }
