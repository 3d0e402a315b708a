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

type AntecipacaoService interface {
	Simular(ctx context.Context, req dto.SimularAntecipacaoRequest) (*dto.PrecificacaoResponse, error)
	Solicitar(ctx context.Context, req dto.SolicitarAntecipacaoRequest) (*dto.AntecipacaoResponse, error)
	Transicionar(ctx context.Context, id uuid.UUID, alvo string) (*dto.AntecipacaoResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.AntecipacaoResponse, error)
	Listar(ctx context.Context, filter dto.AntecipacaoFilter) (*dto.AntecipacaoListResponse, error)
}

type antecipacaoService struct {
	repo          repository.AntecipacaoRepository
	recebivelRepo repository.RecebivelRepository
	credito       CreditoService
}

func NewAntecipacaoService(
	repo repository.AntecipacaoRepository,
	recebivelRepo repository.RecebivelRepository,
	credito CreditoService,
) AntecipacaoService {
	return &antecipacaoService{repo: repo, recebivelRepo: recebivelRepo, credito: credito}
}

// transicoes is the anticipation state machine. Absent entries are invalid;
// recusada and concluida are terminal.
var transicoes = map[string][]string{
	model.AntecipacaoSolicitada: {model.AntecipacaoAprovada, model.AntecipacaoRecusada},
	model.AntecipacaoAprovada:   {model.AntecipacaoConcluida, model.AntecipacaoRecusada},
}

func transicaoValida(de, para string) bool {
	for _, alvo := range transicoes[de] {
		if alvo == para {
			return true
		}
	}
	return false
}

// Simular prices a candidate set against the active line without creating
// anything. Pure read.
func (s *antecipacaoService) Simular(ctx context.Context, req dto.SimularAntecipacaoRequest) (*dto.PrecificacaoResponse, error) {
	construtoraID, err := uuid.Parse(req.ConstrutoraID)
	if err != nil {
		return nil, fmt.Errorf("construtora_id inválido: %w", err)
	}

	dataAvaliacao := time.Now()
	if req.DataAvaliacao != nil {
		dataAvaliacao, err = time.Parse("2006-01-02", *req.DataAvaliacao)
		if err != nil {
			return nil, fmt.Errorf("data_avaliacao inválida: %w", err)
		}
	}

	linha, err := s.credito.LinhaAtiva(ctx, construtoraID)
	if err != nil {
		return nil, err
	}

	recs, err := s.carregarRecebiveis(ctx, construtoraID, req.RecebivelIDs)
	if err != nil {
		return nil, err
	}

	resultado, err := PrecificarRecebiveis(recs, linha, dataAvaliacao)
	if err != nil {
		return nil, err
	}
	return precificacaoToResponse(resultado), nil
}

// Solicitar creates the anticipation request: prices the set, snapshots the
// rates in force and links every receivable. Receivables keep their "apto"
// status until approval.
func (s *antecipacaoService) Solicitar(ctx context.Context, req dto.SolicitarAntecipacaoRequest) (*dto.AntecipacaoResponse, error) {
	construtoraID, err := uuid.Parse(req.ConstrutoraID)
	if err != nil {
		return nil, fmt.Errorf("construtora_id inválido: %w", err)
	}
	obraID, err := uuid.Parse(req.ObraID)
	if err != nil {
		return nil, fmt.Errorf("obra_id inválido: %w", err)
	}

	linha, err := s.credito.LinhaAtiva(ctx, construtoraID)
	if err != nil {
		return nil, err
	}

	recs, err := s.carregarRecebiveis(ctx, construtoraID, req.RecebivelIDs)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ObraID != obraID {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("recebível %s não pertence à obra informada", recs[i].ID)}
		}
	}

	// A receivable already tied to a live anticipation cannot be offered again.
	ids := make([]uuid.UUID, 0, len(recs))
	for i := range recs {
		ids = append(ids, recs[i].ID)
	}
	vinculados, err := s.repo.RecebiveisVinculados(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(vinculados) > 0 {
		return nil, &ConflitoError{
			Recurso: "recebiveis",
			Detalhe: fmt.Sprintf("%d recebível(is) já vinculados a outra antecipação", len(vinculados)),
		}
	}

	resultado, err := PrecificarRecebiveis(recs, linha, time.Now())
	if err != nil {
		return nil, err
	}

	ant := &model.Antecipacao{
		ConstrutoraID:        construtoraID,
		ObraID:               obraID,
		ValorTotal:           decimal.NewFromFloat(resultado.ValorTotal),
		ValorLiquido:         decimal.NewFromFloat(resultado.ValorLiquido),
		QuantidadeRecebiveis: resultado.QuantidadeRecebiveis,
		TaxaAte180:           linha.TaxaAte180,
		TaxaAte360:           linha.TaxaAte360,
		TaxaAte720:           linha.TaxaAte720,
		TaxaLongoPrazo:       linha.TaxaLongoPrazo,
		TarifaPorRecebivel:   linha.TarifaPorRecebivel,
		Status:               model.AntecipacaoSolicitada,
	}
	for _, rp := range resultado.Recebiveis {
		ant.Recebiveis = append(ant.Recebiveis, model.AntecipacaoRecebivel{
			RecebivelID: rp.Recebivel.ID,
			Valor:       rp.Recebivel.Valor,
			Vencimento:  rp.Recebivel.Vencimento,
		})
	}

	if err := s.repo.Create(ctx, ant); err != nil {
		return nil, err
	}
	return antecipacaoToResponse(ant), nil
}

// Transicionar drives the state machine. Approval is the only transition
// with side effects, and they are atomic: the credit compare-and-swap, the
// status flip and the receivable re-status land in one transaction or not at
// all. The flip itself is guarded on the source status, so a transition
// racing another one loses at the UPDATE and the whole transaction rolls
// back. Credit consumed by an approval is NOT refunded on a later transition
// to recusada — current product behavior, pending confirmation.
func (s *antecipacaoService) Transicionar(ctx context.Context, id uuid.UUID, alvo string) (*dto.AntecipacaoResponse, error) {
	ant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAntecipacaoNaoEncontrada
		}
		return nil, err
	}

	if !transicaoValida(ant.Status, alvo) {
		return nil, &TransicaoInvalidaError{De: ant.Status, Para: alvo}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if alvo == model.AntecipacaoAprovada {
			if err := s.credito.ConsumirTx(ctx, tx, ant.ConstrutoraID, ant.ValorTotal); err != nil {
				return err
			}
			ids := make([]uuid.UUID, 0, len(ant.Recebiveis))
			for i := range ant.Recebiveis {
				ids = append(ids, ant.Recebiveis[i].RecebivelID)
			}
			if err := s.recebivelRepo.UpdateStatusTx(tx, ids, model.RecebivelAntecipado); err != nil {
				return err
			}
		}
		rows, err := s.repo.UpdateStatusTx(tx, id, ant.Status, alvo)
		if err != nil {
			return err
		}
		if rows == 0 {
			atual, rerr := s.repo.FindByID(ctx, id)
			if rerr != nil {
				if errors.Is(rerr, gorm.ErrRecordNotFound) {
					return ErrAntecipacaoNaoEncontrada
				}
				return rerr
			}
			return &TransicaoInvalidaError{De: atual.Status, Para: alvo}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ant.Status = alvo
	return antecipacaoToResponse(ant), nil
}

func (s *antecipacaoService) Buscar(ctx context.Context, id uuid.UUID) (*dto.AntecipacaoResponse, error) {
	ant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAntecipacaoNaoEncontrada
		}
		return nil, err
	}
	return antecipacaoToResponse(ant), nil
}

func (s *antecipacaoService) Listar(ctx context.Context, filter dto.AntecipacaoFilter) (*dto.AntecipacaoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.AntecipacaoResponse, 0, len(items))
	for i := range items {
		data = append(data, *antecipacaoToResponse(&items[i]))
	}
	return &dto.AntecipacaoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// carregarRecebiveis loads the receivables and validates ownership and
// eligibility.
func (s *antecipacaoService) carregarRecebiveis(ctx context.Context, construtoraID uuid.UUID, rawIDs []string) ([]model.Recebivel, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("recebivel_id inválido: %w", err)
		}
		ids = append(ids, id)
	}

	recs, err := s.recebivelRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(recs) != len(ids) {
		return nil, ErrRecebivelNaoEncontrado
	}
	for i := range recs {
		if recs[i].ConstrutoraID != construtoraID {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("recebível %s não pertence à construtora", recs[i].ID)}
		}
		if recs[i].Status != model.RecebivelApto {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("recebível %s não está apto para antecipação (status %s)", recs[i].ID, recs[i].Status)}
		}
	}
	return recs, nil
}

// ── mappers ──────────────────────────────────────────────────────────────────

func precificacaoToResponse(r *ResultadoPrecificacao) *dto.PrecificacaoResponse {
	resp := &dto.PrecificacaoResponse{
		ValorTotal:           decimal.NewFromFloat(r.ValorTotal).Round(2),
		ValorLiquido:         decimal.NewFromFloat(r.ValorLiquido).Round(2),
		QuantidadeRecebiveis: r.QuantidadeRecebiveis,
	}
	for _, rp := range r.Recebiveis {
		resp.Recebiveis = append(resp.Recebiveis, dto.RecebivelPrecificado{
			RecebivelID:       rp.Recebivel.ID.String(),
			Valor:             rp.Recebivel.Valor,
			Vencimento:        rp.Recebivel.Vencimento.Format("2006-01-02"),
			DiasAteVencimento: rp.DiasAteVencimento,
			TaxaAplicada:      decimal.NewFromFloat(rp.TaxaAplicada),
			Desconto:          decimal.NewFromFloat(rp.Desconto).Round(2),
			ValorLiquido:      decimal.NewFromFloat(rp.ValorLiquido).Round(2),
		})
	}
	return resp
}

func antecipacaoToResponse(a *model.Antecipacao) *dto.AntecipacaoResponse {
	return &dto.AntecipacaoResponse{
		ID:                   a.ID.String(),
		ConstrutoraID:        a.ConstrutoraID.String(),
		ObraID:               a.ObraID.String(),
		ValorTotal:           a.ValorTotal,
		ValorLiquido:         a.ValorLiquido,
		QuantidadeRecebiveis: a.QuantidadeRecebiveis,
		TaxaAte180:           a.TaxaAte180,
		TaxaAte360:           a.TaxaAte360,
		TaxaAte720:           a.TaxaAte720,
		TaxaLongoPrazo:       a.TaxaLongoPrazo,
		TarifaPorRecebivel:   a.TarifaPorRecebivel,
		Status:               a.Status,
		CreatedAt:            a.CreatedAt.Format(time.RFC3339),
	}
}
