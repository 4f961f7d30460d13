package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

// probeTimeout bounds a single probe regardless of the configured interval.
const probeTimeout = 5 * time.Second

// Scheduler periodically probes the provider and records the result.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    telemetry.Prober
	store     telemetry.StatusStore
	interval  time.Duration
	logger    *slog.Logger

	mu            sync.Mutex
	lastReachable *bool
}

// New creates a new Scheduler.
func New(prober telemetry.Prober, store telemetry.StatusStore, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		store:     store,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// A non-positive interval disables probing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: provider probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		s.ProbeOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// ProbeOnce runs a single probe, stores the result and logs reachability changes.
func (s *Scheduler) ProbeOnce(ctx context.Context) telemetry.ProviderStatus {
	status := s.prober.Probe(ctx)
	s.store.SaveStatus(status)

	s.mu.Lock()
	changed := s.lastReachable == nil || *s.lastReachable != status.Reachable
	reachable := status.Reachable
	s.lastReachable = &reachable
	s.mu.Unlock()

	if !changed {
		s.logger.Debug("scheduler: provider probed",
			"provider", status.Provider,
			"reachable", status.Reachable,
			"latency", status.Latency,
		)
		return status
	}

	if status.Reachable {
		s.logger.Info("scheduler: provider reachable",
			"provider", status.Provider,
			"status_code", status.StatusCode,
			"latency", status.Latency,
		)
	} else {
		s.logger.Warn("scheduler: provider unreachable",
			"provider", status.Provider,
			"error", status.Error,
		)
	}
	return status
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
