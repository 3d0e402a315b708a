package service

import (
	"context"
	"testing"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/dto"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parcelaFixture struct {
	svc           ParcelaService
	planoRepo     *stubPlanoRepo
	cobrancaRepo  *stubCobrancaRepo
	recebivelRepo *stubRecebivelRepo
	antRepo       *stubAntecipacaoRepo

	construtoraID uuid.UUID
	obraID        uuid.UUID
	antecipacao   *model.Antecipacao
}

func newParcelaFixture(permitirPmtComoCobranca bool) *parcelaFixture {
	f := &parcelaFixture{
		planoRepo:     newStubPlanoRepo(),
		cobrancaRepo:  newStubCobrancaRepo(),
		recebivelRepo: newStubRecebivelRepo(),
		antRepo:       newStubAntecipacaoRepo(),
		construtoraID: uuid.New(),
		obraID:        uuid.New(),
	}
	f.recebivelRepo.cobrancas = f.cobrancaRepo
	f.antecipacao = &model.Antecipacao{
		ID:            uuid.New(),
		ConstrutoraID: f.construtoraID,
		ObraID:        f.obraID,
		ValorTotal:    decimal.NewFromInt(30000),
		Status:        model.AntecipacaoAprovada,
	}
	f.antRepo.antecipacoes[f.antecipacao.ID] = f.antecipacao
	f.svc = NewParcelaService(f.planoRepo, f.cobrancaRepo, f.recebivelRepo, f.antRepo, permitirPmtComoCobranca)
	return f
}

func (f *parcelaFixture) criarPlano(t *testing.T, parcelas ...dto.ParcelaRequest) *dto.PlanoResponse {
	t.Helper()
	resp, err := f.svc.CriarPlano(context.Background(), dto.CriarPlanoRequest{
		AntecipacaoID:    f.antecipacao.ID.String(),
		DiaCobranca:      10,
		TetoFundoReserva: decimal.NewFromInt(5000),
		Parcelas:         parcelas,
	})
	require.NoError(t, err)
	return resp
}

func parcelaReq(numero int, pmt int64, recebivelIDs ...string) dto.ParcelaRequest {
	return dto.ParcelaRequest{
		Numero:       numero,
		Vencimento:   time.Now().AddDate(0, numero, 0).Format("2006-01-02"),
		PMT:          decimal.NewFromInt(pmt),
		SaldoDevedor: decimal.NewFromInt(30000 - pmt*int64(numero)),
		RecebivelIDs: recebivelIDs,
	}
}

func TestCriarPlanoComProveniencia(t *testing.T) {
	f := newParcelaFixture(true)
	rec := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 10000, time.Now().AddDate(0, 3, 0)))

	resp := f.criarPlano(t,
		parcelaReq(1, 10000, rec.ID.String()),
		parcelaReq(2, 10000),
	)
	require.Len(t, resp.Parcelas, 2)
	assert.Equal(t, f.antecipacao.ID.String(), resp.AntecipacaoID)
	assert.Equal(t, f.obraID.String(), resp.ObraID)

	require.Len(t, f.planoRepo.pmts, 1)
	assert.Equal(t, rec.ID, f.planoRepo.pmts[0].RecebivelID)
	assert.Equal(t, resp.Parcelas[0].ID, f.planoRepo.pmts[0].ParcelaID.String())
}

func TestCriarPlanoExigeAntecipacaoAprovada(t *testing.T) {
	f := newParcelaFixture(true)
	f.antecipacao.Status = model.AntecipacaoSolicitada

	_, err := f.svc.CriarPlano(context.Background(), dto.CriarPlanoRequest{
		AntecipacaoID: f.antecipacao.ID.String(),
		DiaCobranca:   10,
		Parcelas:      []dto.ParcelaRequest{parcelaReq(1, 10000)},
	})
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)
}

func TestCriarPlanoRejeitaNumeroDuplicado(t *testing.T) {
	f := newParcelaFixture(true)

	_, err := f.svc.CriarPlano(context.Background(), dto.CriarPlanoRequest{
		AntecipacaoID: f.antecipacao.ID.String(),
		DiaCobranca:   10,
		Parcelas:      []dto.ParcelaRequest{parcelaReq(1, 10000), parcelaReq(1, 10000)},
	})
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)
}

func TestCriarPlanoUnicoPorAntecipacao(t *testing.T) {
	f := newParcelaFixture(true)
	f.criarPlano(t, parcelaReq(1, 10000))

	_, err := f.svc.CriarPlano(context.Background(), dto.CriarPlanoRequest{
		AntecipacaoID: f.antecipacao.ID.String(),
		DiaCobranca:   10,
		Parcelas:      []dto.ParcelaRequest{parcelaReq(1, 10000)},
	})
	var cerr *ConflitoError
	require.ErrorAs(t, err, &cerr)
}

func TestVincularCobrancaSucessoParcial(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 50000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)

	valido := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 12000, time.Now().AddDate(0, 2, 0)))
	outraObra := f.recebivelRepo.add(recebivelApto(f.construtoraID, uuid.New(), 8000, time.Now().AddDate(0, 2, 0)))
	ocupado := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 9000, time.Now().AddDate(0, 2, 0)))
	f.cobrancaRepo.vinculos[uuid.New()] = &model.RecebivelCobranca{
		ID: uuid.New(), ParcelaID: uuid.New(), RecebivelID: ocupado.ID,
	}

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{valido.ID.String(), outraObra.ID.String(), ocupado.ID.String()},
	})
	require.NoError(t, err)

	require.Len(t, resp.Criados, 1)
	assert.Equal(t, valido.ID.String(), resp.Criados[0].RecebivelID)
	assert.ElementsMatch(t, []string{outraObra.ID.String(), ocupado.ID.String()}, resp.Rejeitados)
	assert.Nil(t, resp.Aviso)

	parcela, err := f.planoRepo.FindParcela(context.Background(), parcelaID)
	require.NoError(t, err)
	assert.True(t, parcela.TotalRecebiveis.Equal(decimal.NewFromInt(12000)))
}

func TestVincularCobrancaAvisaExcessoSobrePMT(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 10000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)

	rec := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 15000, time.Now().AddDate(0, 2, 0)))

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{rec.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, resp.Criados, 1)
	require.NotNil(t, resp.Aviso)
	assert.Contains(t, *resp.Aviso, "excede o PMT")
}

func TestVincularCobrancaNovoVencimentoPadrao(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 10000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
	rec := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 5000, time.Now().AddDate(0, 2, 0)))

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{rec.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, resp.Criados, 1)
	require.NotNil(t, resp.Criados[0].NovoVencimento)
	assert.Equal(t, plano.Parcelas[0].Vencimento, *resp.Criados[0].NovoVencimento)
}

func TestCandidatosRespeitamFlagPmtComoCobranca(t *testing.T) {
	ctx := context.Background()

	montar := func(permitir bool) (*parcelaFixture, uuid.UUID, *model.Recebivel, *model.Recebivel) {
		f := newParcelaFixture(permitir)
		proprio := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 10000, time.Now().AddDate(0, 3, 0)))
		livre := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 7000, time.Now().AddDate(0, 3, 0)))
		plano := f.criarPlano(t, parcelaReq(1, 10000, proprio.ID.String()))
		parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
		f.cobrancaRepo.pmts = f.planoRepo.pmts
		return f, parcelaID, proprio, livre
	}

	f, parcelaID, proprio, livre := montar(true)
	candidatos, err := f.svc.CandidatosCobranca(ctx, parcelaID)
	require.NoError(t, err)
	ids := make([]string, 0, len(candidatos))
	for _, c := range candidatos {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{proprio.ID.String(), livre.ID.String()}, ids)

	f, parcelaID, proprio, livre = montar(false)
	candidatos, err = f.svc.CandidatosCobranca(ctx, parcelaID)
	require.NoError(t, err)
	require.Len(t, candidatos, 1)
	assert.Equal(t, livre.ID.String(), candidatos[0].ID)
	_ = proprio
}

func TestVincularProprioPmtBloqueadoComFlagDesligada(t *testing.T) {
	f := newParcelaFixture(false)
	proprio := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 10000, time.Now().AddDate(0, 3, 0)))
	plano := f.criarPlano(t, parcelaReq(1, 10000, proprio.ID.String()))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
	f.cobrancaRepo.pmts = f.planoRepo.pmts

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{proprio.ID.String()},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Criados)
	assert.Equal(t, []string{proprio.ID.String()}, resp.Rejeitados)
}

func TestDesvincularCobranca(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 10000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
	rec := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 5000, time.Now().AddDate(0, 2, 0)))

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{rec.ID.String()},
	})
	require.NoError(t, err)
	vinculoID := uuid.MustParse(resp.Criados[0].VinculoID)

	require.NoError(t, f.svc.DesvincularCobranca(context.Background(), parcelaID, vinculoID))

	parcela, err := f.planoRepo.FindParcela(context.Background(), parcelaID)
	require.NoError(t, err)
	assert.True(t, parcela.TotalRecebiveis.IsZero())
	assert.Empty(t, f.cobrancaRepo.vinculos)
}

func TestDesvincularBloqueadoComBoletoEmitido(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 10000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
	rec := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 5000, time.Now().AddDate(0, 2, 0)))

	resp, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{rec.ID.String()},
	})
	require.NoError(t, err)
	vinculoID := uuid.MustParse(resp.Criados[0].VinculoID)
	f.cobrancaRepo.vinculos[vinculoID].Boleto = &model.Boleto{StatusEmissao: model.BoletoEmitido}

	err = f.svc.DesvincularCobranca(context.Background(), parcelaID, vinculoID)
	var cerr *ConflitoError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Detalhe, "boleto emitido")
}

func TestResumoConciliacaoDiferencaInformativa(t *testing.T) {
	f := newParcelaFixture(true)
	plano := f.criarPlano(t, parcelaReq(1, 10000))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)

	r1 := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 6000, time.Now().AddDate(0, 2, 0)))
	r2 := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 3000, time.Now().AddDate(0, 2, 0)))
	_, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{r1.ID.String(), r2.ID.String()},
	})
	require.NoError(t, err)

	resumo, err := f.svc.ResumoConciliacao(context.Background(), parcelaID)
	require.NoError(t, err)
	assert.True(t, resumo.PMT.Equal(decimal.NewFromInt(10000)))
	assert.True(t, resumo.TotalSelecionado.Equal(decimal.NewFromInt(9000)))
	// diferenca = pmt - total selecionado: positiva quando falta cobertura
	assert.True(t, resumo.Diferenca.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resumo.TetoFundoReserva.Equal(decimal.NewFromInt(5000)))
}

func TestFontesDaParcelaSeparaOrigens(t *testing.T) {
	f := newParcelaFixture(true)
	original := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 10000, time.Now().AddDate(0, 3, 0)))
	plano := f.criarPlano(t, parcelaReq(1, 10000, original.ID.String()))
	parcelaID := uuid.MustParse(plano.Parcelas[0].ID)
	f.cobrancaRepo.pmts = f.planoRepo.pmts
	for i := range f.cobrancaRepo.pmts {
		f.cobrancaRepo.pmts[i].Recebivel = original
	}

	substituto := f.recebivelRepo.add(recebivelApto(f.construtoraID, f.obraID, 9500, time.Now().AddDate(0, 2, 0)))
	_, err := f.svc.VincularCobranca(context.Background(), parcelaID, dto.VincularCobrancaRequest{
		RecebivelIDs: []string{substituto.ID.String()},
	})
	require.NoError(t, err)

	fontes, err := f.svc.FontesDaParcela(context.Background(), parcelaID)
	require.NoError(t, err)
	require.Len(t, fontes.Originais, 1)
	require.Len(t, fontes.Cobrancas, 1)
	assert.Equal(t, "pmt", fontes.Originais[0].Tipo)
	assert.Equal(t, original.ID.String(), fontes.Originais[0].RecebivelID)
	assert.Equal(t, "cobranca", fontes.Cobrancas[0].Tipo)
	assert.Equal(t, substituto.ID.String(), fontes.Cobrancas[0].RecebivelID)
}
