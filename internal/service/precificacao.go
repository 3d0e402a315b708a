package service

// precificacao.go — tiered compound-discount pricing of receivables.
//
// Pure and deterministic: output is a function of (recebiveis, linha, data)
// only. All accumulation happens in IEEE-754 float64; rounding to 2 decimals
// is a display concern and happens at the DTO edge, never here.

import (
	"fmt"
	"math"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"
)

// RecebivelPrecificado is the per-receivable pricing breakdown.
type RecebivelPrecificado struct {
	Recebivel         *model.Recebivel
	DiasAteVencimento int
	TaxaAplicada      float64 // % ao mês
	FatorCrescimento  float64
	Desconto          float64
	ValorLiquido      float64
}

// ResultadoPrecificacao aggregates a pricing run.
type ResultadoPrecificacao struct {
	ValorTotal           float64
	ValorLiquido         float64
	QuantidadeRecebiveis int
	Recebiveis           []RecebivelPrecificado
}

// DiasAteVencimento counts days from dataAvaliacao to vencimento, rounding
// any partial day up.
func DiasAteVencimento(vencimento, dataAvaliacao time.Time) int {
	return int(math.Ceil(vencimento.Sub(dataAvaliacao).Hours() / 24))
}

// taxaParaPrazo selects the tier rate for a days-to-due. Bounds are
// inclusive: exactly 180/360/720 days uses the lower tier.
func taxaParaPrazo(linha *model.LinhaCredito, dias int) float64 {
	switch {
	case dias <= 180:
		return linha.TaxaAte180.InexactFloat64()
	case dias <= 360:
		return linha.TaxaAte360.InexactFloat64()
	case dias <= 720:
		return linha.TaxaAte720.InexactFloat64()
	default:
		return linha.TaxaLongoPrazo.InexactFloat64()
	}
}

// PrecificarRecebiveis prices a set of receivables against the construtora's
// active credit line. Per receivable:
//
//	fator    = (1 + taxa/100) ^ (dias/30)
//	desconto = valor × (fator − 1)
//	liquido  = valor − desconto − tarifa
//
// The engine is the authority for the operation window: a receivable whose
// days-to-due exceeds linha.LimiteDiasOperacao is rejected, never clamped.
func PrecificarRecebiveis(recebiveis []model.Recebivel, linha *model.LinhaCredito, dataAvaliacao time.Time) (*ResultadoPrecificacao, error) {
	if linha == nil {
		return nil, &ValidacaoError{Detalhe: "linha de crédito é obrigatória para precificação"}
	}
	if len(recebiveis) == 0 {
		return nil, &ValidacaoError{Detalhe: "nenhum recebível informado"}
	}

	tarifa := linha.TarifaPorRecebivel.InexactFloat64()
	out := &ResultadoPrecificacao{
		QuantidadeRecebiveis: len(recebiveis),
		Recebiveis:           make([]RecebivelPrecificado, 0, len(recebiveis)),
	}

	for i := range recebiveis {
		rec := &recebiveis[i]
		valor := rec.Valor.InexactFloat64()
		if valor <= 0 {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("recebível %s tem valor não positivo", rec.ID)}
		}

		dias := DiasAteVencimento(rec.Vencimento, dataAvaliacao)
		if dias <= 0 {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf("recebível %s já venceu ou vence hoje", rec.ID)}
		}
		if dias > linha.LimiteDiasOperacao {
			return nil, &ValidacaoError{Detalhe: fmt.Sprintf(
				"recebível %s vence em %d dias, acima do limite de operação de %d dias",
				rec.ID, dias, linha.LimiteDiasOperacao)}
		}

		taxa := taxaParaPrazo(linha, dias)
		fator := math.Pow(1+taxa/100, float64(dias)/30)
		desconto := valor * (fator - 1)
		liquido := valor - desconto - tarifa

		out.ValorTotal += valor
		out.ValorLiquido += liquido
		out.Recebiveis = append(out.Recebiveis, RecebivelPrecificado{
			Recebivel:         rec,
			DiasAteVencimento: dias,
			TaxaAplicada:      taxa,
			FatorCrescimento:  fator,
			Desconto:          desconto,
			ValorLiquido:      liquido,
		})
	}
	return out, nil
}
