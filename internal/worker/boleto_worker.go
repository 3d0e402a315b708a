package worker

// boleto_worker.go
// Processes emission jobs from QueueBoleto: registers the boleto with the
// bank gateway, stores the bank identifiers, renders the PDF slip and
// optionally enqueues an email to the sacado.
// Transient gateway failures use exponential backoff (max 3 in-process
// retries); after that the boleto stays "criado" and the retry cron owns it.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/infra"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"
	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BoletoJobPayload is the job envelope sent to QueueBoleto.
type BoletoJobPayload struct {
	BoletoID          string  `json:"boleto_id"`
	DestinatarioEmail *string `json:"destinatario_email,omitempty"`
}

// BoletoWorker registers boletos with the bank gateway and persists the
// outcome.
type BoletoWorker struct {
	bancoClient    *infra.BancoClient
	boletoRepo     repository.BoletoRepository
	cobrancaRepo   repository.CobrancaRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	cedenteCNPJ    string
}

func NewBoletoWorker(
	bancoClient *infra.BancoClient,
	boletoRepo repository.BoletoRepository,
	cobrancaRepo repository.CobrancaRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	cedenteCNPJ string,
) *BoletoWorker {
	return &BoletoWorker{
		bancoClient:    bancoClient,
		boletoRepo:     boletoRepo,
		cobrancaRepo:   cobrancaRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		cedenteCNPJ:    cedenteCNPJ,
	}
}

// Process handles a single emission job:
//  1. Parse BoletoJobPayload from the job envelope
//  2. Fetch the boleto and its cobrança (for sacado data)
//  3. Call the bank gateway with exponential backoff (max 3 retries)
//  4. Persist the result: emitido + identifiers, or schedule a retry
//  5. Generate the PDF slip
//  6. Optionally enqueue an email job to the sacado
func (w *BoletoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload BoletoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("boleto_worker: invalid payload")
		return
	}

	boletoID, err := uuid.Parse(payload.BoletoID)
	if err != nil {
		log.Error().Str("boleto_id", payload.BoletoID).Msg("boleto_worker: invalid boleto_id")
		return
	}

	boleto, err := w.boletoRepo.FindByID(ctx, boletoID)
	if err != nil {
		log.Error().Err(err).Str("boleto_id", payload.BoletoID).Msg("boleto_worker: boleto not found")
		return
	}
	if boleto.StatusEmissao != model.BoletoCriado {
		log.Warn().
			Str("boleto_id", payload.BoletoID).
			Str("status", boleto.StatusEmissao).
			Msg("boleto_worker: boleto not pending emission, skipping")
		return
	}

	rc, err := w.cobrancaRepo.FindByID(ctx, boleto.RecebivelCobrancaID)
	if err != nil || rc.Recebivel == nil {
		log.Error().Err(err).Str("boleto_id", payload.BoletoID).Msg("boleto_worker: cobrança not found")
		return
	}

	var gwResp *infra.BoletoGatewayResponse
	gwErr := withRetry(ctx, 3, func(attempt int) error {
		resp, err := w.bancoClient.Registrar(ctx, infra.BoletoPayload{
			CedenteCNPJ:     w.cedenteCNPJ,
			Sacado:          rc.Recebivel.Sacado,
			SacadoDocumento: rc.Recebivel.SacadoDocumento,
			Valor:           boleto.ValorCorrigido.InexactFloat64(),
			Vencimento:      boleto.Vencimento.Format("2006-01-02"),
			Referencia:      boleto.ID.String(),
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("boleto_id", payload.BoletoID).
				Msg("boleto_worker: gateway attempt failed, retrying")
			return err
		}
		gwResp = resp
		return nil
	})

	if gwErr != nil {
		// Stays "criado"; the retry cron picks it up from proxima_tentativa_em.
		boleto.TentativasEmissao++
		errMsg := gwErr.Error()
		boleto.UltimoErro = &errMsg
		next := time.Now().Add(computeRetryBackoff(boleto.TentativasEmissao))
		boleto.ProximaTentativaEm = &next
		_ = w.boletoRepo.Update(ctx, boleto)
		log.Error().Err(gwErr).Str("boleto_id", payload.BoletoID).Msg("boleto_worker: gateway failed after all retries")
		return
	}

	if gwResp.Resultado != "registrado" {
		boleto.StatusEmissao = model.BoletoCancelado
		msg := fmt.Sprintf("banco rejeitou o registro: %s", gwResp.Mensagem)
		boleto.UltimoErro = &msg
		boleto.ProximaTentativaEm = nil
		boleto.NormalizarStatusPagamento()
		_ = w.boletoRepo.Update(ctx, boleto)
		log.Warn().
			Str("boleto_id", payload.BoletoID).
			Str("resultado", gwResp.Resultado).
			Msg("boleto_worker: registro rejeitado pelo banco")
		return
	}

	boleto.StatusEmissao = model.BoletoEmitido
	boleto.NossoNumero = &gwResp.NossoNumero
	boleto.LinhaDigitavel = &gwResp.LinhaDigitavel
	boleto.ProximaTentativaEm = nil
	boleto.UltimoErro = nil
	boleto.NormalizarStatusPagamento()

	pdfPath, pdfErr := infra.GenerateBoletoPDF(boleto, rc.Recebivel.Sacado, rc.Recebivel.SacadoDocumento, w.cedenteCNPJ, w.pdfStoragePath)
	if pdfErr != nil {
		log.Warn().Err(pdfErr).Str("boleto_id", payload.BoletoID).Msg("boleto_worker: PDF generation failed")
	} else {
		boleto.PDFPath = &pdfPath
	}

	if err := w.boletoRepo.Update(ctx, boleto); err != nil {
		log.Error().Err(err).Str("boleto_id", payload.BoletoID).Msg("boleto_worker: failed to persist emission")
		return
	}
	log.Info().
		Str("boleto_id", payload.BoletoID).
		Str("nosso_numero", gwResp.NossoNumero).
		Msg("boleto_worker: boleto emitido")

	if payload.DestinatarioEmail != nil && *payload.DestinatarioEmail != "" && boleto.PDFPath != nil {
		emailJob := EmailJobPayload{
			ToEmail: *payload.DestinatarioEmail,
			Subject: fmt.Sprintf("Boleto de cobrança — vencimento %s", boleto.Vencimento.Format("02/01/2006")),
			Body:    fmt.Sprintf("Segue em anexo o boleto no valor de R$ %s.", boleto.ValorCorrigido.StringFixed(2)),
			PDFPath: *boleto.PDFPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.DestinatarioEmail).Msg("boleto_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
