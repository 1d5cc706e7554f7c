package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestaogado/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail     = "jobs:email"
	QueueRelatorio = "jobs:relatorio"
	QueueWebhook   = "jobs:webhook"

	JobEmail          = "email"
	JobRelatorioVenda = "relatorio_venda"
	JobWebhook        = "webhook"

	maxAttempts = 3
)

// ErrFilaIndisponivel is returned by the Dispatcher when Redis is not configured.
var ErrFilaIndisponivel = errors.New("fila de jobs indisponivel")

// ErrPayloadInvalido marks jobs that can never succeed; they skip retries
// and go straight to the DLQ.
var ErrPayloadInvalido = errors.New("payload invalido")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// EnqueueRelatorioVenda pushes a sale report (PDF + mail) job to Redis.
func (d *Dispatcher) EnqueueRelatorioVenda(ctx context.Context, payload RelatorioVendaJobPayload) error {
	return d.enqueue(ctx, QueueRelatorio, JobRelatorioVenda, payload)
}

// EnqueueWebhook pushes a notification webhook job to Redis.
func (d *Dispatcher) EnqueueWebhook(ctx context.Context, payload infra.WebhookPayload) error {
	return d.enqueue(ctx, QueueWebhook, JobWebhook, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrFilaIndisponivel
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler processes one decoded payload. Returning an error wrapping
// ErrPayloadInvalido disables retries for that job.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to their processors. Nil entries are skipped
// with a warning, which is how a deployment without SMTP or webhook runs.
type WorkerHandlers struct {
	Email     JobHandler
	Relatorio JobHandler
	Webhook   JobHandler
}

func (h *WorkerHandlers) forType(jobType string) JobHandler {
	switch jobType {
	case JobEmail:
		return h.Email
	case JobRelatorioVenda:
		return h.Relatorio
	case JobWebhook:
		return h.Webhook
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// brpopBackoff is the pause before the next BRPOP. A timeout (redis.Nil) or a
// cancelled context loops immediately; anything else means Redis is unhealthy.
func brpopBackoff(err error) time.Duration {
	if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0
	}
	return 2 * time.Second
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRelatorio, QueueEmail, QueueWebhook}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if d := brpopBackoff(err); d > 0 {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed, backing off")
					select {
					case <-ctx.Done():
					case <-time.After(d):
					}
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			if dead := processJob(ctx, handlers, result[0], result[1]); dead != nil {
				SendToDLQ(ctx, rdb, *dead)
			}
		}
	}
}

// processJob runs the job with retries and returns the DLQ entry to store when
// it finally fails, nil otherwise.
func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) *DLQEntry {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return newDLQEntry(queue, "", json.RawMessage(raw), "envelope invalido: "+err.Error(), 0)
	}

	h := handlers.forType(job.Type)
	if h == nil {
		log.Warn().Str("job_type", job.Type).Str("queue", queue).Msg("no handler for job type, dropping")
		return nil
	}

	attempts := 0
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := h.Process(ctx, job.Payload)
		if err != nil && errors.Is(err, ErrPayloadInvalido) {
			return &permanentError{err}
		}
		if err != nil {
			log.Warn().Err(err).Str("job_type", job.Type).Int("attempt", attempts).Msg("job attempt failed")
		}
		return err
	})
	if err == nil {
		log.Debug().Str("job_type", job.Type).Str("queue", queue).Msg("job done")
		return nil
	}
	return newDLQEntry(queue, job.Type, job.Payload, err.Error(), attempts)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// A *permanentError stops the loop at once.
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
		err := fn(i)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return fmt.Errorf("%d tentativas: %w", maxAttempts, lastErr)
}
