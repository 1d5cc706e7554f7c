package worker

// relatorio_worker.go
// Renders the sale report PDF, stores its path on the venda and mails it to
// the admins listed in the job.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestaogado/internal/infra"
	"gestaogado/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RelatorioVendaJobPayload carries everything the PDF needs, computed by the
// sales service at registration time.
type RelatorioVendaJobPayload struct {
	Report        infra.VendaReport `json:"report"`
	Destinatarios []string          `json:"destinatarios"`
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type RelatorioWorker struct {
	vendaRepo   repository.VendaRepository
	emails      EmailEnqueuer
	storagePath string
	render      func(r infra.VendaReport, storagePath string) (string, error)
}

func NewRelatorioWorker(vendaRepo repository.VendaRepository, emails EmailEnqueuer, storagePath string) *RelatorioWorker {
	return &RelatorioWorker{
		vendaRepo:   vendaRepo,
		emails:      emails,
		storagePath: storagePath,
		render:      infra.GenerateVendaPDF,
	}
}

func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RelatorioVendaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("relatorio_worker: %v: %w", err, ErrPayloadInvalido)
	}
	vendaID, err := uuid.Parse(payload.Report.VendaID)
	if err != nil {
		return fmt.Errorf("relatorio_worker: venda_id %q: %w", payload.Report.VendaID, ErrPayloadInvalido)
	}

	path, err := w.render(payload.Report, w.storagePath)
	if err != nil {
		return fmt.Errorf("relatorio_worker: pdf: %w", err)
	}
	if err := w.vendaRepo.SetPDFPath(ctx, vendaID, path); err != nil {
		return fmt.Errorf("relatorio_worker: save pdf path: %w", err)
	}
	log.Info().Str("venda_id", vendaID.String()).Str("pdf", path).Msg("relatorio_worker: PDF generated")

	if w.emails == nil {
		return nil
	}
	subject := fmt.Sprintf("Venda do lote %s", payload.Report.CodigoLote)
	body := fmt.Sprintf("Lote %s vendido em %s.\nValor: R$ %s\nLucro: R$ %s (%s%%)\n\nRelatorio em anexo.",
		payload.Report.CodigoLote, payload.Report.DataVenda.Format("02/01/2006"),
		payload.Report.Valor.StringFixed(2), payload.Report.Lucro.StringFixed(2), payload.Report.Margem.StringFixed(2))
	for _, to := range payload.Destinatarios {
		job := EmailJobPayload{ToEmail: to, Subject: subject, Body: body, AttachmentPath: path}
		if err := w.emails.EnqueueEmail(ctx, job); err != nil {
			// The PDF is already stored; a retry would only regenerate it.
			log.Warn().Err(err).Str("to", to).Msg("relatorio_worker: failed to enqueue email")
		}
	}
	return nil
}
