package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"gestaogado/internal/infra"

	"github.com/rs/zerolog/log"
)

// WebhookPoster is satisfied by *infra.WebhookClient.
type WebhookPoster interface {
	Post(ctx context.Context, payload infra.WebhookPayload) error
}

// WebhookWorker forwards new notifications to WEBHOOK_URL.
type WebhookWorker struct {
	client WebhookPoster
}

func NewWebhookWorker(client WebhookPoster) *WebhookWorker {
	return &WebhookWorker{client: client}
}

func (w *WebhookWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload infra.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("webhook_worker: %v: %w", err, ErrPayloadInvalido)
	}
	if err := w.client.Post(ctx, payload); err != nil {
		return err
	}
	log.Debug().Str("notificacao_id", payload.NotificacaoID).Msg("webhook_worker: delivered")
	return nil
}
