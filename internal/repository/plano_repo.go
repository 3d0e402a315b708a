package repository

import (
	"context"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanoRepository interface {
	// CreateTx persists the plan, its parcelas and the RecebivelPmt
	// provenance rows inside the given transaction.
	CreateTx(tx *gorm.DB, plano *model.PlanoPagamento, pmts []model.RecebivelPmt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PlanoPagamento, error)
	FindByAntecipacao(ctx context.Context, antecipacaoID uuid.UUID) (*model.PlanoPagamento, error)
	FindParcela(ctx context.Context, parcelaID uuid.UUID) (*model.Parcela, error)
	// PlanoDaParcela resolves a parcela back to its plan (for obra lookup).
	PlanoDaParcela(ctx context.Context, parcelaID uuid.UUID) (*model.PlanoPagamento, error)
	UpdateParcelaTotalTx(tx *gorm.DB, parcelaID uuid.UUID, delta interface{}) error

	DB() *gorm.DB
}

type planoRepo struct{ db *gorm.DB }

func NewPlanoRepository(db *gorm.DB) PlanoRepository { return &planoRepo{db: db} }

func (r *planoRepo) CreateTx(tx *gorm.DB, plano *model.PlanoPagamento, pmts []model.RecebivelPmt) error {
	if err := tx.Create(plano).Error; err != nil {
		return err
	}
	if len(pmts) == 0 {
		return nil
	}
	return tx.Create(&pmts).Error
}

func (r *planoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PlanoPagamento, error) {
	var p model.PlanoPagamento
	err := r.db.WithContext(ctx).
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("parcelas.numero ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *planoRepo) FindByAntecipacao(ctx context.Context, antecipacaoID uuid.UUID) (*model.PlanoPagamento, error) {
	var p model.PlanoPagamento
	err := r.db.WithContext(ctx).
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB { return db.Order("parcelas.numero ASC") }).
		First(&p, "antecipacao_id = ?", antecipacaoID).Error
	return &p, err
}

func (r *planoRepo) FindParcela(ctx context.Context, parcelaID uuid.UUID) (*model.Parcela, error) {
	var p model.Parcela
	err := r.db.WithContext(ctx).First(&p, "id = ?", parcelaID).Error
	return &p, err
}

func (r *planoRepo) PlanoDaParcela(ctx context.Context, parcelaID uuid.UUID) (*model.PlanoPagamento, error) {
	var parcela model.Parcela
	if err := r.db.WithContext(ctx).First(&parcela, "id = ?", parcelaID).Error; err != nil {
		return nil, err
	}
	var plano model.PlanoPagamento
	err := r.db.WithContext(ctx).First(&plano, "id = ?", parcela.PlanoID).Error
	return &plano, err
}

func (r *planoRepo) UpdateParcelaTotalTx(tx *gorm.DB, parcelaID uuid.UUID, delta interface{}) error {
	return tx.Model(&model.Parcela{}).
		Where("id = ?", parcelaID).
		Update("total_recebiveis", gorm.Expr("total_recebiveis + ?", delta)).Error
}

func (r *planoRepo) DB() *gorm.DB { return r.db }
