package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookPayload is posted to WEBHOOK_URL for every new notification so the
// farm can mirror alerts into its chat tool of choice.
type WebhookPayload struct {
	Evento         string  `json:"evento"`
	NotificacaoID  string  `json:"notificacao_id"`
	Mensagem       string  `json:"mensagem"`
	DestinatarioID string  `json:"destinatario_id"`
	RemetenteID    *string `json:"remetente_id,omitempty"`
	LoteID         *string `json:"lote_id,omitempty"`
	BoiID          *string `json:"boi_id,omitempty"`
	CriadaEm       string  `json:"criada_em"`
}

// WebhookClient is a resty-backed client for the outbound notification hook.
type WebhookClient struct {
	http *resty.Client
	url  string
	cb   *CircuitBreaker
}

// NewWebhookClient returns nil when url is empty; callers treat nil as disabled.
func NewWebhookClient(url string, cb *CircuitBreaker) *WebhookClient {
	if url == "" {
		return nil
	}
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	return &WebhookClient{http: client, url: url, cb: cb}
}

// Post sends payload to the configured URL. Non-2xx responses are errors.
func (w *WebhookClient) Post(ctx context.Context, payload WebhookPayload) error {
	if w == nil {
		return nil
	}
	call := func() error {
		resp, err := w.http.R().SetContext(ctx).SetBody(payload).Post(w.url)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("webhook: status %d", resp.StatusCode())
		}
		return nil
	}
	if w.cb == nil {
		return call()
	}
	return w.cb.Execute(call)
}
