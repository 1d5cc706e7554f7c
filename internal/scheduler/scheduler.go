package scheduler

import (
	"context"
	"fmt"
	"time"

	"gestaogado/internal/config"
	"gestaogado/internal/repository"
	"gestaogado/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the periodic jobs: vaccination reminders and the daily
// dashboard snapshot.
type Scheduler struct {
	cron          *cron.Cron
	notificacoes  service.NotificacaoService
	relatorios    service.RelatorioService
	snapshots     repository.SnapshotRepository // nil when MONGO_URI is unset
	cronVacinacao string
	cronSnapshot  string
	now           func() time.Time
}

// NewScheduler creates a scheduler. snapshots may be nil, which disables the
// snapshot job.
func NewScheduler(
	cfg *config.Config,
	notificacoes service.NotificacaoService,
	relatorios service.RelatorioService,
	snapshots repository.SnapshotRepository,
) *Scheduler {
	// Standard 5-field parser (min, hour, dom, month, dow).
	return &Scheduler{
		cron:          cron.New(),
		notificacoes:  notificacoes,
		relatorios:    relatorios,
		snapshots:     snapshots,
		cronVacinacao: cfg.CronVacinacao,
		cronSnapshot:  cfg.CronSnapshot,
		now:           time.Now,
	}
}

// Start registers the jobs and starts the cron loop. A malformed expression
// is returned before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronVacinacao, s.lembretesVacinacao); err != nil {
		return fmt.Errorf("agendar lembrete de vacinacao %q: %w", s.cronVacinacao, err)
	}
	if s.snapshots != nil {
		if _, err := s.cron.AddFunc(s.cronSnapshot, s.snapshotDiario); err != nil {
			return fmt.Errorf("agendar snapshot diario %q: %w", s.cronSnapshot, err)
		}
	}
	log.Info().
		Str("vacinacao", s.cronVacinacao).
		Bool("snapshot", s.snapshots != nil).
		Msg("scheduler: started")
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	log.Info().Msg("scheduler: stopping")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) lembretesVacinacao() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.notificacoes.LembretesVacinacao(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("scheduler: vaccination reminder failed")
		return
	}
	log.Info().Int("enviadas", n).Msg("scheduler: vaccination reminders sent")
}

func (s *Scheduler) snapshotDiario() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	dash, err := s.relatorios.Dashboard(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: dashboard for snapshot failed")
		return
	}
	agora := s.now()
	snap := repository.SnapshotDiario{
		Dia:       agora.Format("2006-01-02"),
		Dashboard: *dash,
		CriadoEm:  agora.UTC(),
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.Error().Err(err).Str("dia", snap.Dia).Msg("scheduler: snapshot save failed")
		return
	}
	log.Info().Str("dia", snap.Dia).Msg("scheduler: daily snapshot stored")
}
