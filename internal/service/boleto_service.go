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

// BoletoDispatcher enqueues the asynchronous emission job. Implemented by
// the worker dispatcher; nil disables async emission (tests).
type BoletoDispatcher interface {
	EnqueueBoleto(ctx context.Context, boletoID uuid.UUID) error
}

type BoletoService interface {
	Criar(ctx context.Context, req dto.CriarBoletoRequest) (*dto.BoletoResponse, error)
	Emitir(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error)
	RegistrarPagamento(ctx context.Context, id uuid.UUID, req dto.RegistrarPagamentoBoletoRequest) (*dto.BoletoResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error)

	// PDFPath returns the stored PDF location of an emitted boleto.
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type boletoService struct {
	repo         repository.BoletoRepository
	cobrancaRepo repository.CobrancaRepository
	indices      IndiceService
	dispatcher   BoletoDispatcher
}

func NewBoletoService(
	repo repository.BoletoRepository,
	cobrancaRepo repository.CobrancaRepository,
	indices IndiceService,
	dispatcher BoletoDispatcher,
) BoletoService {
	return &boletoService{repo: repo, cobrancaRepo: cobrancaRepo, indices: indices, dispatcher: dispatcher}
}

// Criar builds the billing instrument for a recebível de cobrança. With an
// index, the face value is corrected by the compound adjustment from the
// receivable's original due month (exclusive) up to the novo vencimento
// month (inclusive), rounded half-up to centavos at the very end.
func (s *boletoService) Criar(ctx context.Context, req dto.CriarBoletoRequest) (*dto.BoletoResponse, error) {
	cobrancaID, err := uuid.Parse(req.RecebivelCobrancaID)
	if err != nil {
		return nil, fmt.Errorf("recebivel_cobranca_id inválido: %w", err)
	}

	rc, err := s.cobrancaRepo.FindByID(ctx, cobrancaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecebivelNaoEncontrado
		}
		return nil, err
	}
	if rc.Recebivel == nil {
		return nil, ErrRecebivelNaoEncontrado
	}
	if rc.Boleto != nil && rc.Boleto.StatusEmissao != model.BoletoCancelado {
		return nil, &ConflitoError{Recurso: "boletos", Detalhe: "o recebível de cobrança já possui boleto"}
	}

	valorFace := rc.Recebivel.Valor
	boleto := &model.Boleto{
		RecebivelCobrancaID: cobrancaID,
		ValorFace:           valorFace,
		ValorCorrigido:      valorFace,
		Vencimento:          rc.NovoVencimento,
		StatusEmissao:       model.BoletoCriado,
	}
	boleto.NormalizarStatusPagamento()

	var correcao *dto.CorrecaoBoletoResponse
	if req.IndiceID != nil {
		indiceID, err := uuid.Parse(*req.IndiceID)
		if err != nil {
			return nil, fmt.Errorf("indice_id inválido: %w", err)
		}
		acc, err := s.indices.CorrecaoAcumulada(ctx, indiceID, rc.Recebivel.Vencimento, rc.NovoVencimento)
		if err != nil {
			return nil, err
		}

		boleto.IndiceID = &indiceID
		boleto.PercentualCorrecao = acc.Percentual
		boleto.ValorCorrigido = valorFace.
			Mul(decimal.NewFromFloat(acc.Fator)).
			Round(2)

		correcao = &dto.CorrecaoBoletoResponse{
			IndiceID:       acc.IndiceID,
			MesBase:        acc.MesInicio,
			MesAlvo:        acc.MesFim,
			Percentual:     acc.Percentual,
			MesesAplicados: acc.MesesAplicados,
		}
	}

	if err := s.repo.Create(ctx, boleto); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflitoError{Recurso: "boletos", Detalhe: "o recebível de cobrança já possui boleto"}
		}
		return nil, err
	}
	return boletoToResponse(boleto, correcao), nil
}

// Emitir hands the boleto to the emission queue. The gateway round-trip is
// asynchronous; the caller polls the boleto until status_emissao flips.
func (s *boletoService) Emitir(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error) {
	boleto, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if boleto.StatusEmissao != model.BoletoCriado {
		return nil, &TransicaoInvalidaError{De: boleto.StatusEmissao, Para: model.BoletoEmitido}
	}
	if s.dispatcher == nil {
		return nil, &ValidacaoError{Detalhe: "emissão assíncrona indisponível"}
	}
	if err := s.dispatcher.EnqueueBoleto(ctx, boleto.ID); err != nil {
		return nil, err
	}
	log.Info().Str("boleto_id", boleto.ID.String()).Msg("boleto enfileirado para emissão")
	return boletoToResponse(boleto, nil), nil
}

func (s *boletoService) Cancelar(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error) {
	boleto, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if boleto.StatusEmissao == model.BoletoCancelado {
		return nil, &TransicaoInvalidaError{De: boleto.StatusEmissao, Para: model.BoletoCancelado}
	}
	if boleto.StatusPagamento == model.PagamentoPago {
		return nil, &ConflitoError{Recurso: "boletos", Detalhe: "boleto pago não pode ser cancelado"}
	}

	boleto.StatusEmissao = model.BoletoCancelado
	boleto.ProximaTentativaEm = nil
	boleto.NormalizarStatusPagamento()
	if err := s.repo.Update(ctx, boleto); err != nil {
		return nil, err
	}
	return boletoToResponse(boleto, nil), nil
}

// RegistrarPagamento records the payment status reported by the bank. Only
// emitted boletos carry a payment status at all.
func (s *boletoService) RegistrarPagamento(ctx context.Context, id uuid.UUID, req dto.RegistrarPagamentoBoletoRequest) (*dto.BoletoResponse, error) {
	boleto, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if boleto.StatusEmissao != model.BoletoEmitido {
		return nil, &TransicaoInvalidaError{De: boleto.StatusPagamento, Para: req.Status}
	}

	boleto.StatusPagamento = req.Status
	boleto.NormalizarStatusPagamento()
	if err := s.repo.Update(ctx, boleto); err != nil {
		return nil, err
	}
	return boletoToResponse(boleto, nil), nil
}

func (s *boletoService) Buscar(ctx context.Context, id uuid.UUID) (*dto.BoletoResponse, error) {
	boleto, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	var correcao *dto.CorrecaoBoletoResponse
	if boleto.IndiceID != nil {
		correcao = &dto.CorrecaoBoletoResponse{
			IndiceID:   boleto.IndiceID.String(),
			Percentual: boleto.PercentualCorrecao,
		}
		if rc, err := s.cobrancaRepo.FindByID(ctx, boleto.RecebivelCobrancaID); err == nil && rc.Recebivel != nil {
			correcao.MesBase = model.NormalizarMes(rc.Recebivel.Vencimento).Format("2006-01")
			correcao.MesAlvo = model.NormalizarMes(rc.NovoVencimento).Format("2006-01")
		}
	}
	return boletoToResponse(boleto, correcao), nil
}

func (s *boletoService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	boleto, err := s.buscar(ctx, id)
	if err != nil {
		return "", err
	}
	if boleto.StatusEmissao != model.BoletoEmitido || boleto.PDFPath == nil {
		return "", &ValidacaoError{Detalhe: "boleto ainda não possui PDF"}
	}
	return *boleto.PDFPath, nil
}

func (s *boletoService) buscar(ctx context.Context, id uuid.UUID) (*model.Boleto, error) {
	boleto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoletoNaoEncontrado
		}
		return nil, err
	}
	return boleto, nil
}

func boletoToResponse(b *model.Boleto, correcao *dto.CorrecaoBoletoResponse) *dto.BoletoResponse {
	resp := &dto.BoletoResponse{
		ID:                  b.ID.String(),
		RecebivelCobrancaID: b.RecebivelCobrancaID.String(),
		ValorFace:           b.ValorFace,
		ValorCorrigido:      b.ValorCorrigido,
		Vencimento:          b.Vencimento.Format("2006-01-02"),
		StatusEmissao:       b.StatusEmissao,
		StatusPagamento:     b.StatusPagamento,
		NossoNumero:         b.NossoNumero,
		LinhaDigitavel:      b.LinhaDigitavel,
		Correcao:            correcao,
		CreatedAt:           b.CreatedAt.Format(time.RFC3339),
	}
	if b.PDFPath != nil && b.StatusEmissao == model.BoletoEmitido {
		url := fmt.Sprintf("/v1/boletos/%s/pdf", b.ID)
		resp.PDFUrl = &url
	}
	return resp
}
