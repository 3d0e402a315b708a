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

type CreditoService interface {
	CriarLinha(ctx context.Context, req dto.CriarLinhaCreditoRequest) (*dto.LinhaCreditoResponse, error)
	AtivarLinha(ctx context.Context, id uuid.UUID) error
	LinhaAtiva(ctx context.Context, construtoraID uuid.UUID) (*model.LinhaCredito, error)
	ListarPorConstrutora(ctx context.Context, construtoraID uuid.UUID) ([]dto.LinhaCreditoResponse, error)

	// VerificarCapacidade succeeds iff valor <= crédito disponível.
	VerificarCapacidade(ctx context.Context, construtoraID uuid.UUID, valor decimal.Decimal) error

	// ConsumirTx consumes credit atomically inside the caller's transaction;
	// a zero-row CAS becomes CreditoInsuficienteError with fresh operands.
	ConsumirTx(ctx context.Context, tx *gorm.DB, construtoraID uuid.UUID, valor decimal.Decimal) error
}

type creditoService struct {
	repo repository.LinhaCreditoRepository
}

func NewCreditoService(repo repository.LinhaCreditoRepository) CreditoService {
	return &creditoService{repo: repo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// CriarLinha creates a new credit line as the active one. Deactivation of a
// previously active line and creation of the new one happen in one
// transaction — either both land or neither does.
func (s *creditoService) CriarLinha(ctx context.Context, req dto.CriarLinhaCreditoRequest) (*dto.LinhaCreditoResponse, error) {
	construtoraID, err := uuid.Parse(req.ConstrutoraID)
	if err != nil {
		return nil, fmt.Errorf("construtora_id inválido: %w", err)
	}
	if req.LimiteCredito.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidacaoError{Detalhe: "limite_credito deve ser positivo"}
	}
	for campo, taxa := range map[string]decimal.Decimal{
		"taxa_ate_180":     req.TaxaAte180,
		"taxa_ate_360":     req.TaxaAte360,
		"taxa_ate_720":     req.TaxaAte720,
		"taxa_longo_prazo": req.TaxaLongoPrazo,
	} {
		if taxa.LessThanOrEqual(decimal.Zero) {
			return nil, &ValidacaoError{Detalhe: campo + " deve ser positiva"}
		}
	}
	// Tarifa zero é permitida; negativa inflaria o líquido de cada recebível.
	if req.TarifaPorRecebivel.IsNegative() {
		return nil, &ValidacaoError{Detalhe: "tarifa_por_recebivel não pode ser negativa"}
	}

	linha := &model.LinhaCredito{
		ConstrutoraID:      construtoraID,
		TaxaAte180:         req.TaxaAte180,
		TaxaAte360:         req.TaxaAte360,
		TaxaAte720:         req.TaxaAte720,
		TaxaLongoPrazo:     req.TaxaLongoPrazo,
		TarifaPorRecebivel: req.TarifaPorRecebivel,
		LimiteCredito:      req.LimiteCredito,
		CreditoConsumido:   decimal.Zero,
		LimiteDiasOperacao: req.LimiteDiasOperacao,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CriarAtivandoTx(tx, linha)
	})
	if txErr != nil {
		return nil, txErr
	}
	return linhaToResponse(linha), nil
}

// AtivarLinha re-activates an existing (inactive) line, superseding the
// currently active one atomically.
func (s *creditoService) AtivarLinha(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.AtivarTx(tx, id)
	})
}

func (s *creditoService) LinhaAtiva(ctx context.Context, construtoraID uuid.UUID) (*model.LinhaCredito, error) {
	linha, err := s.repo.FindAtiva(ctx, construtoraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinhaNaoEncontrada
		}
		return nil, err
	}
	return linha, nil
}

func (s *creditoService) ListarPorConstrutora(ctx context.Context, construtoraID uuid.UUID) ([]dto.LinhaCreditoResponse, error) {
	linhas, err := s.repo.ListByConstrutora(ctx, construtoraID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LinhaCreditoResponse, 0, len(linhas))
	for i := range linhas {
		out = append(out, *linhaToResponse(&linhas[i]))
	}
	return out, nil
}

func (s *creditoService) VerificarCapacidade(ctx context.Context, construtoraID uuid.UUID, valor decimal.Decimal) error {
	linha, err := s.LinhaAtiva(ctx, construtoraID)
	if err != nil {
		return err
	}
	if valor.GreaterThan(linha.CreditoDisponivel()) {
		return &CreditoInsuficienteError{
			Disponivel: linha.CreditoDisponivel(),
			Solicitado: valor,
		}
	}
	return nil
}

// ConsumirTx performs the guarded compare-and-swap UPDATE. Two concurrent
// approvals racing for the same line cannot both pass: the limit predicate is
// evaluated inside the UPDATE, so one of them sees zero rows affected.
func (s *creditoService) ConsumirTx(ctx context.Context, tx *gorm.DB, construtoraID uuid.UUID, valor decimal.Decimal) error {
	rows, err := s.repo.ConsumirTx(tx, construtoraID, valor)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Re-read to report fresh operands (and distinguish "no line").
		linha, lerr := s.LinhaAtiva(ctx, construtoraID)
		if lerr != nil {
			return lerr
		}
		return &CreditoInsuficienteError{
			Disponivel: linha.CreditoDisponivel(),
			Solicitado: valor,
		}
	}
	return nil
}

func linhaToResponse(l *model.LinhaCredito) *dto.LinhaCreditoResponse {
	return &dto.LinhaCreditoResponse{
		ID:                 l.ID.String(),
		ConstrutoraID:      l.ConstrutoraID.String(),
		TaxaAte180:         l.TaxaAte180,
		TaxaAte360:         l.TaxaAte360,
		TaxaAte720:         l.TaxaAte720,
		TaxaLongoPrazo:     l.TaxaLongoPrazo,
		TarifaPorRecebivel: l.TarifaPorRecebivel,
		LimiteCredito:      l.LimiteCredito,
		CreditoConsumido:   l.CreditoConsumido,
		CreditoDisponivel:  l.CreditoDisponivel(),
		LimiteDiasOperacao: l.LimiteDiasOperacao,
		Status:             l.Status,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}
