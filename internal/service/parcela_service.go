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

type ParcelaService interface {
	CriarPlano(ctx context.Context, req dto.CriarPlanoRequest) (*dto.PlanoResponse, error)
	BuscarPlano(ctx context.Context, id uuid.UUID) (*dto.PlanoResponse, error)
	PlanoDaAntecipacao(ctx context.Context, antecipacaoID uuid.UUID) (*dto.PlanoResponse, error)

	FontesDaParcela(ctx context.Context, parcelaID uuid.UUID) (*dto.FontesParcelaResponse, error)
	CandidatosCobranca(ctx context.Context, parcelaID uuid.UUID) ([]dto.RecebivelResponse, error)
	VincularCobranca(ctx context.Context, parcelaID uuid.UUID, req dto.VincularCobrancaRequest) (*dto.VincularCobrancaResponse, error)
	DesvincularCobranca(ctx context.Context, parcelaID, vinculoID uuid.UUID) error
	ResumoConciliacao(ctx context.Context, parcelaID uuid.UUID) (*dto.ResumoConciliacaoResponse, error)
}

type parcelaService struct {
	planoRepo       repository.PlanoRepository
	cobrancaRepo    repository.CobrancaRepository
	recebivelRepo   repository.RecebivelRepository
	antecipacaoRepo repository.AntecipacaoRepository

	// permitirPmtComoCobranca keeps a parcela's own amortization receivables
	// eligible as collection instruments for that same parcela.
	permitirPmtComoCobranca bool
}

func NewParcelaService(
	planoRepo repository.PlanoRepository,
	cobrancaRepo repository.CobrancaRepository,
	recebivelRepo repository.RecebivelRepository,
	antecipacaoRepo repository.AntecipacaoRepository,
	permitirPmtComoCobranca bool,
) ParcelaService {
	return &parcelaService{
		planoRepo:               planoRepo,
		cobrancaRepo:            cobrancaRepo,
		recebivelRepo:           recebivelRepo,
		antecipacaoRepo:         antecipacaoRepo,
		permitirPmtComoCobranca: permitirPmtComoCobranca,
	}
}

// CriarPlano persists a desk-built amortization schedule for an approved
// anticipation, plus the provenance rows tying each parcela to the
// receivables that amortize it. The schedule is stored as received; no
// recomputation happens here.
func (s *parcelaService) CriarPlano(ctx context.Context, req dto.CriarPlanoRequest) (*dto.PlanoResponse, error) {
	antecipacaoID, err := uuid.Parse(req.AntecipacaoID)
	if err != nil {
		return nil, fmt.Errorf("antecipacao_id inválido: %w", err)
	}

	ant, err := s.antecipacaoRepo.FindByID(ctx, antecipacaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAntecipacaoNaoEncontrada
		}
		return nil, err
	}
	if ant.Status != model.AntecipacaoAprovada && ant.Status != model.AntecipacaoConcluida {
		return nil, &ValidacaoError{Detalhe: fmt.Sprintf(
			"plano de pagamento exige antecipação aprovada (status atual: %s)", ant.Status)}
	}

	plano := &model.PlanoPagamento{
		AntecipacaoID:    antecipacaoID,
		ObraID:           ant.ObraID,
		DiaCobranca:      req.DiaCobranca,
		TetoFundoReserva: req.TetoFundoReserva,
	}
	numeros := make(map[int]bool, len(req.Parcelas))
	for _, pr := range req.Parcelas {
		if numeros[pr.Numero] {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("parcela %d duplicada no plano", pr.Numero)}
		}
		numeros[pr.Numero] = true

		venc, err := time.Parse("2006-01-02", pr.Vencimento)
		if err != nil {
			return nil, fmt.Errorf("vencimento da parcela %d inválido: %w", pr.Numero, err)
		}
		// Parcela ids are assigned here so the provenance rows can reference
		// them in the same batch insert.
		plano.Parcelas = append(plano.Parcelas, model.Parcela{
			ID:           uuid.New(),
			Numero:       pr.Numero,
			Vencimento:   venc,
			PMT:          pr.PMT,
			SaldoDevedor: pr.SaldoDevedor,
			FundoReserva: pr.FundoReserva,
			Devolucao:    pr.Devolucao,
		})
	}

	var pmts []model.RecebivelPmt
	for i, pr := range req.Parcelas {
		for _, raw := range pr.RecebivelIDs {
			recebivelID, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("recebivel_id inválido na parcela %d: %w", pr.Numero, err)
			}
			pmts = append(pmts, model.RecebivelPmt{
				ParcelaID:   plano.Parcelas[i].ID,
				RecebivelID: recebivelID,
			})
		}
	}

	txErr := runTx(ctx, s.planoRepo.DB(), func(tx *gorm.DB) error {
		return s.planoRepo.CreateTx(tx, plano, pmts)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, &ConflitoError{Recurso: "planos_pagamento", Detalhe: "a antecipação já possui plano de pagamento"}
		}
		return nil, txErr
	}
	return planoToResponse(plano), nil
}

func (s *parcelaService) BuscarPlano(ctx context.Context, id uuid.UUID) (*dto.PlanoResponse, error) {
	plano, err := s.planoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelaNaoEncontrada
		}
		return nil, err
	}
	return planoToResponse(plano), nil
}

func (s *parcelaService) PlanoDaAntecipacao(ctx context.Context, antecipacaoID uuid.UUID) (*dto.PlanoResponse, error) {
	plano, err := s.planoRepo.FindByAntecipacao(ctx, antecipacaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAntecipacaoNaoEncontrada
		}
		return nil, err
	}
	return planoToResponse(plano), nil
}

// FontesDaParcela lists both sides of the reconciliation view: the original
// amortization receivables (pmt) and the substituted collection instruments
// (cobranca).
func (s *parcelaService) FontesDaParcela(ctx context.Context, parcelaID uuid.UUID) (*dto.FontesParcelaResponse, error) {
	if _, err := s.planoRepo.FindParcela(ctx, parcelaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelaNaoEncontrada
		}
		return nil, err
	}

	pmts, err := s.cobrancaRepo.ListPmtByParcela(ctx, parcelaID)
	if err != nil {
		return nil, err
	}
	cobrancas, err := s.cobrancaRepo.ListCobrancaByParcela(ctx, parcelaID)
	if err != nil {
		return nil, err
	}

	resp := &dto.FontesParcelaResponse{ParcelaID: parcelaID.String()}
	for i := range pmts {
		resp.Originais = append(resp.Originais, fontePmt(&pmts[i]))
	}
	for i := range cobrancas {
		resp.Cobrancas = append(resp.Cobrancas, fonteCobranca(&cobrancas[i]))
	}
	return resp, nil
}

// CandidatosCobranca lists the obra's receivables eligible to be attached to
// the parcela. Receivables already attached as cobrança anywhere are always
// out; the parcela's own amortization receivables are out only when the
// permitir-pmt flag is off.
func (s *parcelaService) CandidatosCobranca(ctx context.Context, parcelaID uuid.UUID) ([]dto.RecebivelResponse, error) {
	plano, err := s.planoRepo.PlanoDaParcela(ctx, parcelaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelaNaoEncontrada
		}
		return nil, err
	}

	var excluirPmt *uuid.UUID
	if !s.permitirPmtComoCobranca {
		excluirPmt = &parcelaID
	}

	recs, err := s.recebivelRepo.ListCandidatosCobranca(ctx, plano.ObraID, excluirPmt)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecebivelResponse, 0, len(recs))
	for i := range recs {
		out = append(out, *recebivelToResponse(&recs[i]))
	}
	return out, nil
}

// VincularCobranca attaches receivables to the parcela one by one. The batch
// is deliberately not atomic: a receivable that lost the uniqueness race (or
// fails validation) lands in Rejeitados while the rest are created, so the
// caller retries only what failed.
func (s *parcelaService) VincularCobranca(ctx context.Context, parcelaID uuid.UUID, req dto.VincularCobrancaRequest) (*dto.VincularCobrancaResponse, error) {
	parcela, err := s.planoRepo.FindParcela(ctx, parcelaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelaNaoEncontrada
		}
		return nil, err
	}
	plano, err := s.planoRepo.PlanoDaParcela(ctx, parcelaID)
	if err != nil {
		return nil, err
	}

	novoVencimento := parcela.Vencimento
	if req.NovoVencimento != nil {
		novoVencimento, err = time.Parse("2006-01-02", *req.NovoVencimento)
		if err != nil {
			return nil, fmt.Errorf("novo_vencimento inválido: %w", err)
		}
	}

	resp := &dto.VincularCobrancaResponse{Criados: []dto.FonteParcela{}, Rejeitados: []string{}}
	for _, raw := range req.RecebivelIDs {
		recebivelID, err := uuid.Parse(raw)
		if err != nil {
			resp.Rejeitados = append(resp.Rejeitados, raw)
			continue
		}
		rec, err := s.recebivelRepo.FindByID(ctx, recebivelID)
		if err != nil {
			resp.Rejeitados = append(resp.Rejeitados, raw)
			continue
		}
		if rec.ObraID != plano.ObraID || rec.Status != model.RecebivelApto {
			resp.Rejeitados = append(resp.Rejeitados, raw)
			continue
		}
		if !s.permitirPmtComoCobranca {
			pmts, err := s.cobrancaRepo.ListPmtByParcela(ctx, parcelaID)
			if err != nil {
				return nil, err
			}
			proprio := false
			for i := range pmts {
				if pmts[i].RecebivelID == recebivelID {
					proprio = true
					break
				}
			}
			if proprio {
				resp.Rejeitados = append(resp.Rejeitados, raw)
				continue
			}
		}

		rc := &model.RecebivelCobranca{
			ParcelaID:      parcelaID,
			RecebivelID:    recebivelID,
			NovoVencimento: novoVencimento,
		}
		txErr := runTx(ctx, s.cobrancaRepo.DB(), func(tx *gorm.DB) error {
			if err := s.cobrancaRepo.CreateTx(tx, rc); err != nil {
				return err
			}
			return s.planoRepo.UpdateParcelaTotalTx(tx, parcelaID, rec.Valor)
		})
		if txErr != nil {
			// The unique index on recebivel_id is the authoritative check: a
			// concurrent attach elsewhere surfaces here, not in the listing.
			if errors.Is(txErr, gorm.ErrDuplicatedKey) {
				resp.Rejeitados = append(resp.Rejeitados, raw)
				continue
			}
			return nil, txErr
		}

		rc.Recebivel = rec
		resp.Criados = append(resp.Criados, fonteCobranca(rc))
		parcela.TotalRecebiveis = parcela.TotalRecebiveis.Add(rec.Valor)
	}

	if parcela.TotalRecebiveis.GreaterThan(parcela.PMT) {
		aviso := fmt.Sprintf("total vinculado %s excede o PMT %s da parcela",
			parcela.TotalRecebiveis.StringFixed(2), parcela.PMT.StringFixed(2))
		resp.Aviso = &aviso
	}
	return resp, nil
}

func (s *parcelaService) DesvincularCobranca(ctx context.Context, parcelaID, vinculoID uuid.UUID) error {
	rc, err := s.cobrancaRepo.FindByID(ctx, vinculoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecebivelNaoEncontrado
		}
		return err
	}
	if rc.ParcelaID != parcelaID {
		return &ValidacaoError{Detalhe: "vínculo não pertence à parcela informada"}
	}
	if rc.Boleto != nil && rc.Boleto.StatusEmissao == model.BoletoEmitido {
		return &ConflitoError{Recurso: "recebiveis_cobranca", Detalhe: "vínculo possui boleto emitido; cancele o boleto antes"}
	}

	valor := decimal.Zero
	if rc.Recebivel != nil {
		valor = rc.Recebivel.Valor
	}
	return runTx(ctx, s.cobrancaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.cobrancaRepo.DeleteTx(tx, vinculoID); err != nil {
			return err
		}
		return s.planoRepo.UpdateParcelaTotalTx(tx, parcelaID, valor.Neg())
	})
}

// ResumoConciliacao is advisory only: a nonzero Diferenca never blocks
// attachment or detachment.
func (s *parcelaService) ResumoConciliacao(ctx context.Context, parcelaID uuid.UUID) (*dto.ResumoConciliacaoResponse, error) {
	parcela, err := s.planoRepo.FindParcela(ctx, parcelaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelaNaoEncontrada
		}
		return nil, err
	}
	plano, err := s.planoRepo.PlanoDaParcela(ctx, parcelaID)
	if err != nil {
		return nil, err
	}

	cobrancas, err := s.cobrancaRepo.ListCobrancaByParcela(ctx, parcelaID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for i := range cobrancas {
		if cobrancas[i].Recebivel != nil {
			total = total.Add(cobrancas[i].Recebivel.Valor)
		}
	}

	return &dto.ResumoConciliacaoResponse{
		ParcelaID:        parcelaID.String(),
		PMT:              parcela.PMT,
		TotalSelecionado: total,
		Diferenca:        parcela.PMT.Sub(total),
		FundoReserva:     parcela.FundoReserva,
		TetoFundoReserva: plano.TetoFundoReserva,
	}, nil
}

// ── mappers ──────────────────────────────────────────────────────────────────

func planoToResponse(p *model.PlanoPagamento) *dto.PlanoResponse {
	resp := &dto.PlanoResponse{
		ID:               p.ID.String(),
		AntecipacaoID:    p.AntecipacaoID.String(),
		ObraID:           p.ObraID.String(),
		DiaCobranca:      p.DiaCobranca,
		TetoFundoReserva: p.TetoFundoReserva,
	}
	for i := range p.Parcelas {
		par := &p.Parcelas[i]
		resp.Parcelas = append(resp.Parcelas, dto.ParcelaResponse{
			ID:              par.ID.String(),
			Numero:          par.Numero,
			Vencimento:      par.Vencimento.Format("2006-01-02"),
			TotalRecebiveis: par.TotalRecebiveis,
			PMT:             par.PMT,
			SaldoDevedor:    par.SaldoDevedor,
			FundoReserva:    par.FundoReserva,
			Devolucao:       par.Devolucao,
		})
	}
	return resp
}

func fontePmt(p *model.RecebivelPmt) dto.FonteParcela {
	f := dto.FonteParcela{
		VinculoID:   p.ID.String(),
		Tipo:        "pmt",
		RecebivelID: p.RecebivelID.String(),
	}
	if p.Recebivel != nil {
		f.Sacado = p.Recebivel.Sacado
		f.Valor = p.Recebivel.Valor
		f.Vencimento = p.Recebivel.Vencimento.Format("2006-01-02")
	}
	return f
}

func fonteCobranca(rc *model.RecebivelCobranca) dto.FonteParcela {
	novo := rc.NovoVencimento.Format("2006-01-02")
	f := dto.FonteParcela{
		VinculoID:      rc.ID.String(),
		Tipo:           "cobranca",
		RecebivelID:    rc.RecebivelID.String(),
		NovoVencimento: &novo,
	}
	if rc.Recebivel != nil {
		f.Sacado = rc.Recebivel.Sacado
		f.Valor = rc.Recebivel.Valor
		f.Vencimento = rc.Recebivel.Vencimento.Format("2006-01-02")
	}
	return f
}
