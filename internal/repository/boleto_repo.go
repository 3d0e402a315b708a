package repository

import (
	"context"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoletoRepository interface {
	Create(ctx context.Context, b *model.Boleto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Boleto, error)
	// FindByCobranca returns the live boleto of a cobrança; cancelados are
	// ignored (several may accumulate behind the partial unique index).
	FindByCobranca(ctx context.Context, recebivelCobrancaID uuid.UUID) (*model.Boleto, error)
	Update(ctx context.Context, b *model.Boleto) error

	// ListPendingRetries returns boletos still "criado" whose next emission
	// attempt is due — consumed by the retry cron.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Boleto, error)

	DB() *gorm.DB
}

type boletoRepo struct{ db *gorm.DB }

func NewBoletoRepository(db *gorm.DB) BoletoRepository { return &boletoRepo{db: db} }

func (r *boletoRepo) Create(ctx context.Context, b *model.Boleto) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *boletoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Boleto, error) {
	var b model.Boleto
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return &b, err
}

func (r *boletoRepo) FindByCobranca(ctx context.Context, recebivelCobrancaID uuid.UUID) (*model.Boleto, error) {
	var b model.Boleto
	err := r.db.WithContext(ctx).
		First(&b, "recebivel_cobranca_id = ? AND status_emissao <> ?",
			recebivelCobrancaID, model.BoletoCancelado).Error
	return &b, err
}

func (r *boletoRepo) Update(ctx context.Context, b *model.Boleto) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *boletoRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.Boleto, error) {
	var boletos []model.Boleto
	err := r.db.WithContext(ctx).
		Where("status_emissao = ? AND proxima_tentativa_em IS NOT NULL AND proxima_tentativa_em <= ?",
			model.BoletoCriado, now).
		Order("proxima_tentativa_em ASC").
		Limit(limit).
		Find(&boletos).Error
	return boletos, err
}

func (r *boletoRepo) DB() *gorm.DB { return r.db }
