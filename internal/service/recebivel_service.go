package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecebivelService interface {
	Cadastrar(ctx context.Context, req dto.CadastrarRecebiveisRequest) ([]dto.RecebivelResponse, error)
	Avaliar(ctx context.Context, id uuid.UUID, req dto.AvaliarRecebivelRequest) (*dto.RecebivelResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.RecebivelResponse, error)
	Listar(ctx context.Context, filter dto.RecebivelFilter) (*dto.RecebivelListResponse, error)
	MarcarPago(ctx context.Context, id uuid.UUID) (*dto.RecebivelResponse, error)
}

type recebivelService struct {
	repo repository.RecebivelRepository
}

func NewRecebivelService(repo repository.RecebivelRepository) RecebivelService {
	return &recebivelService{repo: repo}
}

// Cadastrar registers a batch of receivables in status "enviado". Intake is
// all-or-nothing: one malformed row refuses the whole batch.
func (s *recebivelService) Cadastrar(ctx context.Context, req dto.CadastrarRecebiveisRequest) ([]dto.RecebivelResponse, error) {
	construtoraID, err := uuid.Parse(req.ConstrutoraID)
	if err != nil {
		return nil, fmt.Errorf("construtora_id inválido: %w", err)
	}

	recs := make([]model.Recebivel, 0, len(req.Recebiveis))
	for i, rr := range req.Recebiveis {
		obraID, err := uuid.Parse(rr.ObraID)
		if err != nil {
			return nil, fmt.Errorf("obra_id inválido no item %d: %w", i, err)
		}
		if rr.Valor.LessThanOrEqual(decimal.Zero) {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("valor do item %d deve ser positivo", i)}
		}
		venc, err := time.Parse("2006-01-02", rr.Vencimento)
		if err != nil {
			return nil, fmt.Errorf("vencimento inválido no item %d: %w", i, err)
		}
		recs = append(recs, model.Recebivel{
			ConstrutoraID:   construtoraID,
			ObraID:          obraID,
			Sacado:          rr.Sacado,
			SacadoDocumento: rr.SacadoDocumento,
			Valor:           rr.Valor,
			Vencimento:      venc,
			Status:          model.RecebivelEnviado,
		})
	}

	if err := s.repo.CreateBatch(ctx, recs); err != nil {
		return nil, err
	}
	log.Info().
		Str("construtora_id", construtoraID.String()).
		Int("quantidade", len(recs)).
		Msg("recebíveis cadastrados")

	out := make([]dto.RecebivelResponse, 0, len(recs))
	for i := range recs {
		out = append(out, *recebivelToResponse(&recs[i]))
	}
	return out, nil
}

// Avaliar resolves an "enviado" receivable to apto_antecipacao or recusado.
func (s *recebivelService) Avaliar(ctx context.Context, id uuid.UUID, req dto.AvaliarRecebivelRequest) (*dto.RecebivelResponse, error) {
	rec, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.RecebivelEnviado {
		alvo := model.RecebivelRecusado
		if req.Aprovado {
			alvo = model.RecebivelApto
		}
		return nil, &TransicaoInvalidaError{De: rec.Status, Para: alvo}
	}

	status := model.RecebivelRecusado
	if req.Aprovado {
		status = model.RecebivelApto
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	rec.Status = status
	return recebivelToResponse(rec), nil
}

func (s *recebivelService) Buscar(ctx context.Context, id uuid.UUID) (*dto.RecebivelResponse, error) {
	rec, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return recebivelToResponse(rec), nil
}

func (s *recebivelService) Listar(ctx context.Context, filter dto.RecebivelFilter) (*dto.RecebivelListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	recs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RecebivelResponse, 0, len(recs))
	for i := range recs {
		data = append(data, *recebivelToResponse(&recs[i]))
	}
	return &dto.RecebivelListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// MarcarPago settles an anticipated receivable once the payer honors it.
func (s *recebivelService) MarcarPago(ctx context.Context, id uuid.UUID) (*dto.RecebivelResponse, error) {
	rec, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.RecebivelAntecipado {
		return nil, &TransicaoInvalidaError{De: rec.Status, Para: model.RecebivelPago}
	}
	if err := s.repo.UpdateStatus(ctx, id, model.RecebivelPago); err != nil {
		return nil, err
	}
	rec.Status = model.RecebivelPago
	return recebivelToResponse(rec), nil
}

func (s *recebivelService) buscar(ctx context.Context, id uuid.UUID) (*model.Recebivel, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecebivelNaoEncontrado
		}
		return nil, err
	}
	return rec, nil
}

func recebivelToResponse(r *model.Recebivel) *dto.RecebivelResponse {
	return &dto.RecebivelResponse{
		ID:              r.ID.String(),
		ConstrutoraID:   r.ConstrutoraID.String(),
		ObraID:          r.ObraID.String(),
		Sacado:          r.Sacado,
		SacadoDocumento: r.SacadoDocumento,
		Valor:           r.Valor,
		Vencimento:      r.Vencimento.Format("2006-01-02"),
		Status:          r.Status,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}
