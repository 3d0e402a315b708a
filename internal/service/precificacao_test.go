package service

import (
	"testing"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataBase = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func recebivelComPrazo(valor int64, dias int) model.Recebivel {
	return model.Recebivel{
		ID:         uuid.New(),
		Valor:      decimal.NewFromInt(valor),
		Vencimento: dataBase.AddDate(0, 0, dias),
		Status:     model.RecebivelApto,
	}
}

func TestPrecificarRecebivelUnico(t *testing.T) {
	linha := linhaDemo(uuid.New())
	recs := []model.Recebivel{recebivelComPrazo(10000, 90)}

	res, err := PrecificarRecebiveis(recs, linha, dataBase)
	require.NoError(t, err)
	require.Len(t, res.Recebiveis, 1)

	rp := res.Recebiveis[0]
	assert.Equal(t, 90, rp.DiasAteVencimento)
	assert.Equal(t, 2.0, rp.TaxaAplicada)

	// fator = 1.02^3; desconto = 10000 × (fator − 1); líquido = 10000 − desconto − 50
	assert.InDelta(t, 1.061208, rp.FatorCrescimento, 1e-6)
	assert.InDelta(t, 612.08, rp.Desconto, 0.01)
	assert.InDelta(t, 9337.92, rp.ValorLiquido, 0.01)

	assert.InDelta(t, 10000.0, res.ValorTotal, 0.001)
	assert.InDelta(t, 9337.92, res.ValorLiquido, 0.01)
	assert.Equal(t, 1, res.QuantidadeRecebiveis)
}

func TestPrecificarSomaLote(t *testing.T) {
	linha := linhaDemo(uuid.New())
	recs := []model.Recebivel{
		recebivelComPrazo(10000, 90),
		recebivelComPrazo(20000, 200),
	}

	res, err := PrecificarRecebiveis(recs, linha, dataBase)
	require.NoError(t, err)
	assert.Equal(t, 2, res.QuantidadeRecebiveis)
	assert.InDelta(t, 30000.0, res.ValorTotal, 0.001)

	soma := 0.0
	for _, rp := range res.Recebiveis {
		soma += rp.ValorLiquido
	}
	assert.InDelta(t, soma, res.ValorLiquido, 1e-9)
}

func TestTaxaPorFaixaLimitesInclusivos(t *testing.T) {
	linha := linhaDemo(uuid.New())

	casos := []struct {
		dias int
		taxa float64
	}{
		{1, 2.0},
		{180, 2.0}, // limite inclusivo da primeira faixa
		{181, 2.4},
		{360, 2.4},
		{361, 2.9},
		{720, 2.9},
		{721, 3.5},
		{1000, 3.5},
	}
	for _, c := range casos {
		assert.Equal(t, c.taxa, taxaParaPrazo(linha, c.dias), "dias=%d", c.dias)
	}
}

func TestPrecificarDescontoCresceComPrazo(t *testing.T) {
	linha := linhaDemo(uuid.New())

	curto, err := PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, 60)}, linha, dataBase)
	require.NoError(t, err)
	longo, err := PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, 150)}, linha, dataBase)
	require.NoError(t, err)

	assert.Greater(t, longo.Recebiveis[0].Desconto, curto.Recebiveis[0].Desconto)
	assert.Less(t, longo.Recebiveis[0].ValorLiquido, curto.Recebiveis[0].ValorLiquido)
}

func TestPrecificarForaDaJanelaDeOperacao(t *testing.T) {
	linha := linhaDemo(uuid.New())
	linha.LimiteDiasOperacao = 360

	_, err := PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, 361)}, linha, dataBase)
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Detalhe, "limite de operação")
}

func TestPrecificarRecebivelVencido(t *testing.T) {
	linha := linhaDemo(uuid.New())

	_, err := PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, 0)}, linha, dataBase)
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)

	_, err = PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, -30)}, linha, dataBase)
	require.ErrorAs(t, err, &verr)
}

func TestPrecificarEntradasInvalidas(t *testing.T) {
	linha := linhaDemo(uuid.New())
	var verr *ValidacaoError

	_, err := PrecificarRecebiveis(nil, linha, dataBase)
	require.ErrorAs(t, err, &verr)

	_, err = PrecificarRecebiveis([]model.Recebivel{recebivelComPrazo(10000, 90)}, nil, dataBase)
	require.ErrorAs(t, err, &verr)

	zerado := recebivelComPrazo(0, 90)
	_, err = PrecificarRecebiveis([]model.Recebivel{zerado}, linha, dataBase)
	require.ErrorAs(t, err, &verr)
}

func TestDiasAteVencimentoArredondaParaCima(t *testing.T) {
	assert.Equal(t, 10, DiasAteVencimento(dataBase.AddDate(0, 0, 10), dataBase))
	// Fração de dia conta como um dia inteiro.
	assert.Equal(t, 11, DiasAteVencimento(dataBase.AddDate(0, 0, 10).Add(time.Hour), dataBase))
	assert.Equal(t, 0, DiasAteVencimento(dataBase, dataBase))
}
