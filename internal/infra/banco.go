package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BoletoPayload is sent by the worker pool to the bank gateway to register
// a boleto de cobrança.
type BoletoPayload struct {
	CedenteCNPJ     string  `json:"cedente_cnpj"`
	Sacado          string  `json:"sacado"`
	SacadoDocumento string  `json:"sacado_documento"`
	Valor           float64 `json:"valor"`
	Vencimento      string  `json:"vencimento"` // 2006-01-02
	Referencia      string  `json:"referencia"` // boleto id
}

// BoletoGatewayResponse is returned by the gateway after registering the
// boleto with the bank.
type BoletoGatewayResponse struct {
	NossoNumero    string `json:"nosso_numero"`
	LinhaDigitavel string `json:"linha_digitavel"`
	CodigoBarras   string `json:"codigo_barras"`
	Resultado      string `json:"resultado"` // "registrado" | "rejeitado"
	Mensagem       string `json:"mensagem,omitempty"`
}

// BancoClient talks to the bank gateway over HTTP. Calls go through a
// circuit breaker so a gateway outage stops hammering the bank; while the
// breaker is open, emission attempts fail fast and stay queued for retry.
type BancoClient struct {
	gatewayURL string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewBancoClient(gatewayURL string) *BancoClient {
	settings := gobreaker.Settings{
		Name:    "banco-gateway",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("de", from.String()).
				Str("para", to.String()).
				Msg("circuit breaker mudou de estado")
		},
	}
	return &BancoClient{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Aberto reports whether the breaker is currently refusing calls.
func (c *BancoClient) Aberto() bool {
	return c.breaker.State() == gobreaker.StateOpen
}

// Registrar registers the boleto with the bank and returns the bank
// identifiers.
func (c *BancoClient) Registrar(ctx context.Context, payload BoletoPayload) (*BoletoGatewayResponse, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, "/boletos", payload)
	})
	if err != nil {
		return nil, err
	}
	return out.(*BoletoGatewayResponse), nil
}

// Baixar requests the bank to drop an already-registered boleto.
func (c *BancoClient) Baixar(ctx context.Context, nossoNumero string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, "/boletos/"+nossoNumero+"/baixa", struct{}{})
	})
	return err
}

func (c *BancoClient) post(ctx context.Context, path string, payload interface{}) (*BoletoGatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("banco: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("banco: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("banco: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("banco: gateway returned %d", resp.StatusCode)
	}

	var result BoletoGatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("banco: decode response: %w", err)
	}
	return &result, nil
}
