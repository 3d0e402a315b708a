package repository

import (
	"context"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IndiceRepository interface {
	CreateIndice(ctx context.Context, i *model.Indice) error
	FindIndice(ctx context.Context, id uuid.UUID) (*model.Indice, error)
	ListIndices(ctx context.Context) ([]model.Indice, error)

	// CreateAtualizacao inserts a monthly adjustment; the composite unique
	// index rejects a second row for the same (indice, mes).
	CreateAtualizacao(ctx context.Context, a *model.AtualizacaoIndice) error

	// ListAtualizacoesEntre returns the updates with
	// mes_referencia > inicio AND mes_referencia <= fim, chronological.
	ListAtualizacoesEntre(ctx context.Context, indiceID uuid.UUID, inicio, fim time.Time) ([]model.AtualizacaoIndice, error)
}

type indiceRepo struct{ db *gorm.DB }

func NewIndiceRepository(db *gorm.DB) IndiceRepository { return &indiceRepo{db: db} }

func (r *indiceRepo) CreateIndice(ctx context.Context, i *model.Indice) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *indiceRepo) FindIndice(ctx context.Context, id uuid.UUID) (*model.Indice, error) {
	var i model.Indice
	err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error
	return &i, err
}

func (r *indiceRepo) ListIndices(ctx context.Context) ([]model.Indice, error) {
	var indices []model.Indice
	err := r.db.WithContext(ctx).Order("sigla ASC").Find(&indices).Error
	return indices, err
}

func (r *indiceRepo) CreateAtualizacao(ctx context.Context, a *model.AtualizacaoIndice) error {
	a.MesReferencia = model.NormalizarMes(a.MesReferencia)
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *indiceRepo) ListAtualizacoesEntre(ctx context.Context, indiceID uuid.UUID, inicio, fim time.Time) ([]model.AtualizacaoIndice, error) {
	var rows []model.AtualizacaoIndice
	err := r.db.WithContext(ctx).
		Where("indice_id = ? AND mes_referencia > ? AND mes_referencia <= ?",
			indiceID, model.NormalizarMes(inicio), model.NormalizarMes(fim)).
		Order("mes_referencia ASC").
		Find(&rows).Error
	return rows, err
}
