package service

import (
	"context"

	"gestaogado/internal/infra"
	"gestaogado/internal/worker"
)

// JobDispatcher is satisfied by *worker.Dispatcher. Services treat a nil
// dispatcher as "no async side effects".
type JobDispatcher interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
	EnqueueRelatorioVenda(ctx context.Context, payload worker.RelatorioVendaJobPayload) error
	EnqueueWebhook(ctx context.Context, payload infra.WebhookPayload) error
}

// cachePrefixRelatorio namespaces every cached report; any write that changes
// lotes, animals, weights or sales drops the whole namespace.
const cachePrefixRelatorio = "relatorio:"
