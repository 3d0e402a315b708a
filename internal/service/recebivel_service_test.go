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

func cadastroDemo(construtoraID, obraID uuid.UUID) dto.CadastrarRecebiveisRequest {
	return dto.CadastrarRecebiveisRequest{
		ConstrutoraID: construtoraID.String(),
		Recebiveis: []dto.RecebivelRequest{
			{
				ObraID:          obraID.String(),
				Sacado:          "Maria Oliveira",
				SacadoDocumento: "123.456.789-00",
				Valor:           decimal.NewFromInt(10000),
				Vencimento:      time.Now().AddDate(0, 3, 0).Format("2006-01-02"),
			},
			{
				ObraID:          obraID.String(),
				Sacado:          "João Pereira",
				SacadoDocumento: "987.654.321-00",
				Valor:           decimal.NewFromInt(25000),
				Vencimento:      time.Now().AddDate(0, 6, 0).Format("2006-01-02"),
			},
		},
	}
}

func TestCadastrarLoteEntraComoEnviado(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)

	resp, err := svc.Cadastrar(context.Background(), cadastroDemo(uuid.New(), uuid.New()))
	require.NoError(t, err)
	require.Len(t, resp, 2)
	for _, r := range resp {
		assert.Equal(t, model.RecebivelEnviado, r.Status)
		assert.NotEmpty(t, r.ID)
	}
	assert.Len(t, repo.recs, 2)
}

func TestCadastrarLoteTudoOuNada(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)

	req := cadastroDemo(uuid.New(), uuid.New())
	req.Recebiveis[1].Valor = decimal.Zero

	_, err := svc.Cadastrar(context.Background(), req)
	var verr *ValidacaoError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, repo.recs)
}

func TestAvaliarResolveEnviado(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)

	aprovavel := repo.add(&model.Recebivel{Status: model.RecebivelEnviado, Valor: decimal.NewFromInt(1000)})
	recusavel := repo.add(&model.Recebivel{Status: model.RecebivelEnviado, Valor: decimal.NewFromInt(1000)})

	resp, err := svc.Avaliar(context.Background(), aprovavel.ID, dto.AvaliarRecebivelRequest{Aprovado: true})
	require.NoError(t, err)
	assert.Equal(t, model.RecebivelApto, resp.Status)

	motivo := "documentação incompleta"
	resp, err = svc.Avaliar(context.Background(), recusavel.ID, dto.AvaliarRecebivelRequest{Aprovado: false, Motivo: &motivo})
	require.NoError(t, err)
	assert.Equal(t, model.RecebivelRecusado, resp.Status)
}

func TestAvaliarSomenteEnviado(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)

	apto := repo.add(&model.Recebivel{Status: model.RecebivelApto, Valor: decimal.NewFromInt(1000)})

	_, err := svc.Avaliar(context.Background(), apto.ID, dto.AvaliarRecebivelRequest{Aprovado: true})
	var terr *TransicaoInvalidaError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, model.RecebivelApto, terr.De)
}

func TestMarcarPagoSomenteAntecipado(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)

	antecipado := repo.add(&model.Recebivel{Status: model.RecebivelAntecipado, Valor: decimal.NewFromInt(1000)})
	enviado := repo.add(&model.Recebivel{Status: model.RecebivelEnviado, Valor: decimal.NewFromInt(1000)})

	resp, err := svc.MarcarPago(context.Background(), antecipado.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RecebivelPago, resp.Status)

	_, err = svc.MarcarPago(context.Background(), enviado.ID)
	var terr *TransicaoInvalidaError
	require.ErrorAs(t, err, &terr)
}

func TestBuscarRecebivelInexistente(t *testing.T) {
	svc := NewRecebivelService(newStubRecebivelRepo())

	_, err := svc.Buscar(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecebivelNaoEncontrado)
}

func TestListarFiltraPorStatusEObra(t *testing.T) {
	repo := newStubRecebivelRepo()
	svc := NewRecebivelService(repo)
	obraID := uuid.New()

	repo.add(&model.Recebivel{ObraID: obraID, Status: model.RecebivelApto, Valor: decimal.NewFromInt(1000)})
	repo.add(&model.Recebivel{ObraID: obraID, Status: model.RecebivelEnviado, Valor: decimal.NewFromInt(1000)})
	repo.add(&model.Recebivel{ObraID: uuid.New(), Status: model.RecebivelApto, Valor: decimal.NewFromInt(1000)})

	resp, err := svc.Listar(context.Background(), dto.RecebivelFilter{
		ObraID: obraID.String(),
		Status: model.RecebivelApto,
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Total)
}
