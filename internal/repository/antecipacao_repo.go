package repository

import (
	"context"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AntecipacaoRepository interface {
	// Create persists the antecipacao and its recebivel joins (association
	// insert, single statement batch per GORM).
	Create(ctx context.Context, a *model.Antecipacao) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Antecipacao, error)
	List(ctx context.Context, filter dto.AntecipacaoFilter) ([]model.Antecipacao, int64, error)

	// UpdateStatusTx flips the status only while the row still holds `de`,
	// so concurrent transitions serialize on the UPDATE itself. Zero rows
	// means another transaction won.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, de, para string) (int64, error)

	// RecebiveisVinculados returns the ids of receivables tied to any
	// antecipacao that is not recusada — used to keep candidates unencumbered.
	RecebiveisVinculados(ctx context.Context, recebivelIDs []uuid.UUID) ([]uuid.UUID, error)

	DB() *gorm.DB
}

type antecipacaoRepo struct{ db *gorm.DB }

func NewAntecipacaoRepository(db *gorm.DB) AntecipacaoRepository { return &antecipacaoRepo{db: db} }

func (r *antecipacaoRepo) Create(ctx context.Context, a *model.Antecipacao) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *antecipacaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Antecipacao, error) {
	var a model.Antecipacao
	err := r.db.WithContext(ctx).
		Preload("Recebiveis").
		Preload("Recebiveis.Recebivel").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *antecipacaoRepo) List(ctx context.Context, filter dto.AntecipacaoFilter) ([]model.Antecipacao, int64, error) {
	var items []model.Antecipacao
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Antecipacao{})
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
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *antecipacaoRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, de, para string) (int64, error) {
	res := tx.Model(&model.Antecipacao{}).
		Where("id = ? AND status = ?", id, de).
		Update("status", para)
	return res.RowsAffected, res.Error
}

func (r *antecipacaoRepo) RecebiveisVinculados(ctx context.Context, recebivelIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.AntecipacaoRecebivel{}).
		Joins("JOIN antecipacoes ON antecipacoes.id = antecipacao_recebiveis.antecipacao_id").
		Where("antecipacao_recebiveis.recebivel_id IN ?", recebivelIDs).
		Where("antecipacoes.status <> ?", model.AntecipacaoRecusada).
		Pluck("antecipacao_recebiveis.recebivel_id", &ids).Error
	return ids, err
}

func (r *antecipacaoRepo) DB() *gorm.DB { return r.db }
