package service

import (
	"context"
	"testing"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criarLinhaRequest(construtoraID uuid.UUID) dto.CriarLinhaCreditoRequest {
	return dto.CriarLinhaCreditoRequest{
		ConstrutoraID:      construtoraID.String(),
		TaxaAte180:         decimal.NewFromFloat(2.0),
		TaxaAte360:         decimal.NewFromFloat(2.4),
		TaxaAte720:         decimal.NewFromFloat(2.9),
		TaxaLongoPrazo:     decimal.NewFromFloat(3.5),
		TarifaPorRecebivel: decimal.NewFromInt(50),
		LimiteCredito:      decimal.NewFromInt(100000),
		LimiteDiasOperacao: 720,
	}
}

func TestCriarLinhaAtivaENovaDesativaAnterior(t *testing.T) {
	repo := newStubLinhaRepo()
	svc := NewCreditoService(repo)
	construtoraID := uuid.New()

	primeira, err := svc.CriarLinha(context.Background(), criarLinhaRequest(construtoraID))
	require.NoError(t, err)
	assert.Equal(t, model.LinhaAtiva, primeira.Status)
	assert.True(t, primeira.CreditoDisponivel.Equal(decimal.NewFromInt(100000)))

	segunda, err := svc.CriarLinha(context.Background(), criarLinhaRequest(construtoraID))
	require.NoError(t, err)
	assert.Equal(t, model.LinhaAtiva, segunda.Status)

	linhas, err := svc.ListarPorConstrutora(context.Background(), construtoraID)
	require.NoError(t, err)
	require.Len(t, linhas, 2)

	ativas := 0
	for _, l := range linhas {
		if l.Status == model.LinhaAtiva {
			ativas++
			assert.Equal(t, segunda.ID, l.ID)
		}
	}
	assert.Equal(t, 1, ativas)
}

func TestCriarLinhaValidaTaxasELimite(t *testing.T) {
	svc := NewCreditoService(newStubLinhaRepo())
	var verr *ValidacaoError

	req := criarLinhaRequest(uuid.New())
	req.LimiteCredito = decimal.Zero
	_, err := svc.CriarLinha(context.Background(), req)
	require.ErrorAs(t, err, &verr)

	req = criarLinhaRequest(uuid.New())
	req.TaxaAte360 = decimal.NewFromInt(-1)
	_, err = svc.CriarLinha(context.Background(), req)
	require.ErrorAs(t, err, &verr)

	req = criarLinhaRequest(uuid.New())
	req.TarifaPorRecebivel = decimal.NewFromInt(-10)
	_, err = svc.CriarLinha(context.Background(), req)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Detalhe, "tarifa_por_recebivel")
}

func TestCriarLinhaTarifaZeroPermitida(t *testing.T) {
	svc := NewCreditoService(newStubLinhaRepo())

	req := criarLinhaRequest(uuid.New())
	req.TarifaPorRecebivel = decimal.Zero
	linha, err := svc.CriarLinha(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, linha.TarifaPorRecebivel.IsZero())
}

func TestLinhaAtivaInexistente(t *testing.T) {
	svc := NewCreditoService(newStubLinhaRepo())

	_, err := svc.LinhaAtiva(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrLinhaNaoEncontrada)
}

func TestAtivarLinhaSupersedeAtual(t *testing.T) {
	repo := newStubLinhaRepo()
	svc := NewCreditoService(repo)
	construtoraID := uuid.New()

	antiga := linhaDemo(construtoraID)
	antiga.Status = model.LinhaInativa
	repo.linhas[antiga.ID] = antiga

	atual := linhaDemo(construtoraID)
	repo.linhas[atual.ID] = atual

	require.NoError(t, svc.AtivarLinha(context.Background(), antiga.ID))

	ativa, err := svc.LinhaAtiva(context.Background(), construtoraID)
	require.NoError(t, err)
	assert.Equal(t, antiga.ID, ativa.ID)
	assert.Equal(t, model.LinhaInativa, atual.Status)
}

func TestVerificarCapacidade(t *testing.T) {
	repo := newStubLinhaRepo()
	svc := NewCreditoService(repo)
	construtoraID := uuid.New()

	linha := linhaDemo(construtoraID)
	linha.LimiteCredito = decimal.NewFromInt(50000)
	linha.CreditoConsumido = decimal.NewFromInt(40000)
	repo.linhas[linha.ID] = linha

	assert.NoError(t, svc.VerificarCapacidade(context.Background(), construtoraID, decimal.NewFromInt(10000)))

	err := svc.VerificarCapacidade(context.Background(), construtoraID, decimal.NewFromInt(10001))
	var cerr *CreditoInsuficienteError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.Disponivel.Equal(decimal.NewFromInt(10000)))
	assert.True(t, cerr.Solicitado.Equal(decimal.NewFromInt(10001)))
}

func TestConsumirAtualizaSaldo(t *testing.T) {
	repo := newStubLinhaRepo()
	svc := NewCreditoService(repo)
	construtoraID := uuid.New()

	linha := linhaDemo(construtoraID)
	linha.LimiteCredito = decimal.NewFromInt(50000)
	repo.linhas[linha.ID] = linha

	require.NoError(t, svc.ConsumirTx(context.Background(), nil, construtoraID, decimal.NewFromInt(30000)))
	assert.True(t, linha.CreditoConsumido.Equal(decimal.NewFromInt(30000)))
	assert.True(t, linha.CreditoDisponivel().Equal(decimal.NewFromInt(20000)))
}

func TestConsumirAlemDoLimiteNaoAltera(t *testing.T) {
	repo := newStubLinhaRepo()
	svc := NewCreditoService(repo)
	construtoraID := uuid.New()

	linha := linhaDemo(construtoraID)
	linha.LimiteCredito = decimal.NewFromInt(50000)
	linha.CreditoConsumido = decimal.NewFromInt(40000)
	repo.linhas[linha.ID] = linha

	err := svc.ConsumirTx(context.Background(), nil, construtoraID, decimal.NewFromInt(25000))
	var cerr *CreditoInsuficienteError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.Disponivel.Equal(decimal.NewFromInt(10000)))
	assert.True(t, cerr.Solicitado.Equal(decimal.NewFromInt(25000)))

	// O CAS de zero linhas não escreve nada.
	assert.True(t, linha.CreditoConsumido.Equal(decimal.NewFromInt(40000)))
}

func TestConsumirSemLinhaAtiva(t *testing.T) {
	svc := NewCreditoService(newStubLinhaRepo())

	err := svc.ConsumirTx(context.Background(), nil, uuid.New(), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrLinhaNaoEncontrada)
}
