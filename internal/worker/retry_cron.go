package worker

// retry_cron.go
// Background goroutine that periodically re-attempts emission for boletos
// stuck in status_emissao='criado' with proxima_tentativa_em in the past.
// Skips whole ticks while the gateway circuit breaker is open.

import (
	"context"
	"fmt"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/infra"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxBoletoRetries caps total emission attempts before the boleto is
	// parked in the DLQ for manual handling.
	MaxBoletoRetries = 5
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	BoletoRepo   repository.BoletoRepository
	CobrancaRepo repository.CobrancaRepository
	BancoClient  *infra.BancoClient
	RDB          *redis.Client
	CedenteCNPJ  string

	PDFStoragePath string
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries boletos due for another attempt, and re-registers them with the
// gateway. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If the breaker is open, skip entirely — don't hammer a downed gateway
	if cfg.BancoClient.Aberto() {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	boletos, err := cfg.BoletoRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}

	if len(boletos) == 0 {
		return
	}

	log.Info().Int("count", len(boletos)).Msg("retry_cron: processing pending boletos")

	for i := range boletos {
		boleto := &boletos[i]

		// Check breaker state before each call — it may have tripped mid-batch
		if cfg.BancoClient.Aberto() {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		rc, err := cfg.CobrancaRepo.FindByID(ctx, boleto.RecebivelCobrancaID)
		if err != nil || rc.Recebivel == nil {
			log.Error().Err(err).Str("boleto_id", boleto.ID.String()).Msg("retry_cron: cobrança not found")
			continue
		}

		gwResp, gwErr := cfg.BancoClient.Registrar(ctx, infra.BoletoPayload{
			CedenteCNPJ:     cfg.CedenteCNPJ,
			Sacado:          rc.Recebivel.Sacado,
			SacadoDocumento: rc.Recebivel.SacadoDocumento,
			Valor:           boleto.ValorCorrigido.InexactFloat64(),
			Vencimento:      boleto.Vencimento.Format("2006-01-02"),
			Referencia:      boleto.ID.String(),
		})

		if gwErr != nil {
			boleto.TentativasEmissao++
			errMsg := gwErr.Error()
			boleto.UltimoErro = &errMsg
			next := time.Now().Add(computeRetryBackoff(boleto.TentativasEmissao))
			boleto.ProximaTentativaEm = &next

			if boleto.TentativasEmissao >= MaxBoletoRetries {
				boleto.ProximaTentativaEm = nil
				log.Error().
					Str("boleto_id", boleto.ID.String()).
					Int("retries", boleto.TentativasEmissao).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				payload := fmt.Sprintf(`{"boleto_id":"%s"}`, boleto.ID)
				SendToDLQ(ctx, cfg.RDB, QueueBoleto, "boleto", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxBoletoRetries, errMsg),
					boleto.TentativasEmissao)
			} else {
				log.Warn().
					Str("boleto_id", boleto.ID.String()).
					Int("tentativas", boleto.TentativasEmissao).
					Time("proxima_tentativa_em", *boleto.ProximaTentativaEm).
					Msg("retry_cron: emission retry failed, scheduled next attempt")
			}

			_ = cfg.BoletoRepo.Update(ctx, boleto)
			continue
		}

		if gwResp.Resultado != "registrado" {
			boleto.StatusEmissao = model.BoletoCancelado
			msg := fmt.Sprintf("banco rejeitou o registro (retry): %s", gwResp.Mensagem)
			boleto.UltimoErro = &msg
			boleto.ProximaTentativaEm = nil
			boleto.NormalizarStatusPagamento()
			_ = cfg.BoletoRepo.Update(ctx, boleto)
			log.Warn().
				Str("boleto_id", boleto.ID.String()).
				Str("resultado", gwResp.Resultado).
				Msg("retry_cron: registro rejeitado pelo banco")
			continue
		}

		boleto.StatusEmissao = model.BoletoEmitido
		boleto.NossoNumero = &gwResp.NossoNumero
		boleto.LinhaDigitavel = &gwResp.LinhaDigitavel
		boleto.ProximaTentativaEm = nil
		boleto.UltimoErro = nil
		boleto.NormalizarStatusPagamento()

		if pdfPath, pdfErr := infra.GenerateBoletoPDF(boleto, rc.Recebivel.Sacado, rc.Recebivel.SacadoDocumento, cfg.CedenteCNPJ, cfg.PDFStoragePath); pdfErr != nil {
			log.Warn().Err(pdfErr).Str("boleto_id", boleto.ID.String()).Msg("retry_cron: PDF generation failed")
		} else {
			boleto.PDFPath = &pdfPath
		}
		_ = cfg.BoletoRepo.Update(ctx, boleto)

		log.Info().
			Str("boleto_id", boleto.ID.String()).
			Str("nosso_numero", gwResp.NossoNumero).
			Int("total_retries", boleto.TentativasEmissao).
			Msg("retry_cron: boleto emitido after retry")
	}
}

// computeRetryBackoff grows the wait between cron-driven attempts:
// 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(attempts int) time.Duration {
	backoff := time.Minute * time.Duration(1<<uint(attempts-1))
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}
