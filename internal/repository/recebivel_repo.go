package repository

import (
	"context"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecebivelRepository interface {
	CreateBatch(ctx context.Context, recs []model.Recebivel) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recebivel, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Recebivel, error)
	List(ctx context.Context, filter dto.RecebivelFilter) ([]model.Recebivel, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// UpdateStatusTx re-statuses a set of receivables inside a transaction
	// (used by the approval flow).
	UpdateStatusTx(tx *gorm.DB, ids []uuid.UUID, status string) error

	// ListCandidatosCobranca returns receivables of the obra that are
	// apto_antecipacao and not attached as RecebivelCobranca to any parcela.
	// When excluirPmtDaParcela is non-nil, receivables already amortizing
	// that parcela (RecebivelPmt) are excluded too.
	ListCandidatosCobranca(ctx context.Context, obraID uuid.UUID, excluirPmtDaParcela *uuid.UUID) ([]model.Recebivel, error)

	DB() *gorm.DB
}

type recebivelRepo struct{ db *gorm.DB }

func NewRecebivelRepository(db *gorm.DB) RecebivelRepository { return &recebivelRepo{db: db} }

func (r *recebivelRepo) CreateBatch(ctx context.Context, recs []model.Recebivel) error {
	return r.db.WithContext(ctx).Create(&recs).Error
}

func (r *recebivelRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recebivel, error) {
	var rec model.Recebivel
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *recebivelRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Recebivel, error) {
	var recs []model.Recebivel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error
	return recs, err
}

func (r *recebivelRepo) List(ctx context.Context, filter dto.RecebivelFilter) ([]model.Recebivel, int64, error) {
	var recs []model.Recebivel
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Recebivel{})
	if filter.ObraID != "" {
		q = q.Where("obra_id = ?", filter.ObraID)
	}
	if filter.ConstrutoraID != "" {
		q = q.Where("construtora_id = ?", filter.ConstrutoraID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("vencimento ASC").Limit(filter.Limit).Offset(offset).Find(&recs).Error
	return recs, total, err
}

func (r *recebivelRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Recebivel{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *recebivelRepo) UpdateStatusTx(tx *gorm.DB, ids []uuid.UUID, status string) error {
	return tx.Model(&model.Recebivel{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}

func (r *recebivelRepo) ListCandidatosCobranca(ctx context.Context, obraID uuid.UUID, excluirPmtDaParcela *uuid.UUID) ([]model.Recebivel, error) {
	q := r.db.WithContext(ctx).
		Where("obra_id = ? AND status = ?", obraID, model.RecebivelApto).
		Where("id NOT IN (?)", r.db.Model(&model.RecebivelCobranca{}).Select("recebivel_id"))

	if excluirPmtDaParcela != nil {
		q = q.Where("id NOT IN (?)", r.db.Model(&model.RecebivelPmt{}).
			Select("recebivel_id").
			Where("parcela_id = ?", *excluirPmtDaParcela))
	}

	var recs []model.Recebivel
	err := q.Order("vencimento ASC").Find(&recs).Error
	return recs, err
}

func (r *recebivelRepo) DB() *gorm.DB { return r.db }
