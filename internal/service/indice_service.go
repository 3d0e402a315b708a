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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IndiceService interface {
	CriarIndice(ctx context.Context, req dto.CriarIndiceRequest) (*dto.IndiceResponse, error)
	ListarIndices(ctx context.Context) ([]dto.IndiceResponse, error)
	RegistrarAtualizacao(ctx context.Context, indiceID uuid.UUID, req dto.RegistrarAtualizacaoRequest) error

	// CorrecaoAcumulada compounds the monthly updates of the index over
	// (mesInicio, mesFim] — start exclusive, end inclusive. Months without a
	// registered update contribute nothing and raise no error.
	CorrecaoAcumulada(ctx context.Context, indiceID uuid.UUID, mesInicio, mesFim time.Time) (*dto.CorrecaoAcumuladaResponse, error)
}

type indiceService struct {
	repo repository.IndiceRepository
}

func NewIndiceService(repo repository.IndiceRepository) IndiceService {
	return &indiceService{repo: repo}
}

func (s *indiceService) CriarIndice(ctx context.Context, req dto.CriarIndiceRequest) (*dto.IndiceResponse, error) {
	indice := &model.Indice{Nome: req.Nome, Sigla: req.Sigla}
	if err := s.repo.CreateIndice(ctx, indice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflitoError{Recurso: "indices", Detalhe: fmt.Sprintf("sigla %s já cadastrada", req.Sigla)}
		}
		return nil, err
	}
	return indiceToResponse(indice), nil
}

func (s *indiceService) ListarIndices(ctx context.Context) ([]dto.IndiceResponse, error) {
	indices, err := s.repo.ListIndices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IndiceResponse, 0, len(indices))
	for i := range indices {
		out = append(out, *indiceToResponse(&indices[i]))
	}
	return out, nil
}

func (s *indiceService) RegistrarAtualizacao(ctx context.Context, indiceID uuid.UUID, req dto.RegistrarAtualizacaoRequest) error {
	if _, err := s.repo.FindIndice(ctx, indiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIndiceNaoEncontrado
		}
		return err
	}

	mes, err := time.Parse("2006-01", req.MesReferencia)
	if err != nil {
		return fmt.Errorf("mes_referencia inválido: %w", err)
	}

	atu := &model.AtualizacaoIndice{
		IndiceID:      indiceID,
		MesReferencia: mes,
		Percentual:    req.Percentual,
	}
	if err := s.repo.CreateAtualizacao(ctx, atu); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ConflitoError{
				Recurso: "atualizacoes_indice",
				Detalhe: fmt.Sprintf("atualização de %s já registrada para o índice", req.MesReferencia),
			}
		}
		return err
	}
	return nil
}

func (s *indiceService) CorrecaoAcumulada(ctx context.Context, indiceID uuid.UUID, mesInicio, mesFim time.Time) (*dto.CorrecaoAcumuladaResponse, error) {
	fator, meses, err := s.fatorEntre(ctx, indiceID, mesInicio, mesFim)
	if err != nil {
		return nil, err
	}

	resp := &dto.CorrecaoAcumuladaResponse{
		IndiceID:       indiceID.String(),
		MesInicio:      model.NormalizarMes(mesInicio).Format("2006-01"),
		MesFim:         model.NormalizarMes(mesFim).Format("2006-01"),
		Fator:          fator,
		Percentual:     decimal.NewFromFloat((fator - 1) * 100).Round(6),
		MesesAplicados: len(meses),
	}
	for i := range meses {
		resp.Meses = append(resp.Meses, dto.MesCorrigido{
			MesReferencia: meses[i].MesReferencia.Format("2006-01"),
			Percentual:    meses[i].Percentual,
		})
	}
	return resp, nil
}

// fatorEntre is the compounding core, shared with the boleto flow. Returns
// the multiplicative factor and the updates that entered it.
func (s *indiceService) fatorEntre(ctx context.Context, indiceID uuid.UUID, mesInicio, mesFim time.Time) (float64, []model.AtualizacaoIndice, error) {
	if _, err := s.repo.FindIndice(ctx, indiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrIndiceNaoEncontrado
		}
		return 0, nil, err
	}
	if model.NormalizarMes(mesFim).Before(model.NormalizarMes(mesInicio)) {
		return 0, nil, &ValidacaoError{Detalhe: "mes_fim anterior a mes_inicio"}
	}

	meses, err := s.repo.ListAtualizacoesEntre(ctx, indiceID, mesInicio, mesFim)
	if err != nil {
		return 0, nil, err
	}

	fator := 1.0
	for i := range meses {
		fator *= 1 + meses[i].Percentual.InexactFloat64()/100
	}
	return fator, meses, nil
}

func indiceToResponse(i *model.Indice) *dto.IndiceResponse {
	return &dto.IndiceResponse{ID: i.ID.String(), Nome: i.Nome, Sigla: i.Sigla}
}
