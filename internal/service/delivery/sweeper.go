package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-dose-reminder/internal/domain"
	"github.com/KasumiMercury/primind-dose-reminder/internal/infra/push"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-dose-reminder/internal/observability/tracing"
	"github.com/KasumiMercury/primind-dose-reminder/internal/service/settings"
)

const (
	DefaultInterval             = 60 * time.Second
	DefaultBatchLimit           = 100
	DefaultRecipientConcurrency = 4
	DefaultSweepTimeout         = 2 * time.Minute
)

var ErrSweepInProgress = errors.New("delivery sweep already in progress")

type Config struct {
	Interval             time.Duration
	BatchLimit           int
	RecipientConcurrency int
	MaxBatch             int
	// SweepTimeout bounds a background sweep. Background sweeps outlive the Start context so
	// shutdown lets the in-flight batch resolve.
	SweepTimeout time.Duration
}

type Store interface {
	domain.NotificationRepository
	domain.DeviceRepository
}

// Sweeper hands due notifications to the push transport and resolves them. Overlapping runs
// are rejected in-process only; running more than one instance needs an external lock.
type Sweeper struct {
	store     Store
	settings  *settings.Service
	transport push.Transport
	ledger    domain.DispatchLedger
	recorder  domain.DeliveryResultRecorder
	clock     domain.Clock
	cfg       Config
	metrics   *metrics.DeliveryMetrics

	running  atomic.Bool
	inFlight sync.WaitGroup
	notifyC  chan struct{}
}

func NewSweeper(
	store Store,
	settingsService *settings.Service,
	transport push.Transport,
	ledger domain.DispatchLedger,
	recorder domain.DeliveryResultRecorder,
	clock domain.Clock,
	cfg Config,
	deliveryMetrics *metrics.DeliveryMetrics,
) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultBatchLimit
	}
	if cfg.RecipientConcurrency <= 0 {
		cfg.RecipientConcurrency = DefaultRecipientConcurrency
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = push.DefaultMaxBatch
	}
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = DefaultSweepTimeout
	}
	return &Sweeper{
		store:     store,
		settings:  settingsService,
		transport: transport,
		ledger:    ledger,
		recorder:  recorder,
		clock:     clock,
		cfg:       cfg,
		metrics:   deliveryMetrics,
		notifyC:   make(chan struct{}, 1),
	}
}

// Trigger requests a sweep without waiting for the next tick. Pending requests coalesce.
func (s *Sweeper) Trigger() {
	select {
	case s.notifyC <- struct{}{}:
	default:
	}
}

// Start runs sweeps until ctx is cancelled. It returns once the in-flight sweep, if any,
// has finished.
func (s *Sweeper) Start(ctx context.Context) {
	slog.InfoContext(ctx, "delivery sweeper started",
		slog.Duration("interval", s.cfg.Interval),
		slog.Int("batch_limit", s.cfg.BatchLimit),
	)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("delivery sweeper stopping, waiting for in-flight sweep")
			s.inFlight.Wait()
			slog.Info("delivery sweeper stopped")
			return
		case <-ticker.C:
			s.runInBackground(ctx)
		case <-s.notifyC:
			s.runInBackground(ctx)
		}
	}
}

// runInBackground lets a tick that arrives during a long sweep observe the running flag and
// be skipped instead of queueing behind it. The sweep is detached from ctx cancellation so a
// claimed batch is resolved rather than abandoned mid-send.
func (s *Sweeper) runInBackground(ctx context.Context) {
	s.inFlight.Go(func() {
		sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SweepTimeout)
		defer cancel()

		if _, err := s.RunDeliverySweep(sweepCtx); err != nil && !errors.Is(err, ErrSweepInProgress) {
			slog.ErrorContext(sweepCtx, "delivery sweep failed",
				slog.String("error", err.Error()),
			)
		}
	})
}

// RunDeliverySweep resolves up to BatchLimit due notifications. It returns
// ErrSweepInProgress without doing anything while another sweep is running.
func (s *Sweeper) RunDeliverySweep(ctx context.Context) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		if s.metrics != nil {
			s.metrics.RecordSweepSkipped(ctx)
		}
		slog.DebugContext(ctx, "skipping overlapping delivery sweep")
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: s.clock.Now(),
	}
	start := time.Now()

	ctx, span := tracing.StartSweepSpan(ctx, report.RunID, s.cfg.BatchLimit)
	defer span.End()

	due, err := s.store.ListDueNotifications(ctx, report.StartedAt, s.cfg.BatchLimit)
	if err != nil {
		err = fmt.Errorf("list due notifications: %w", err)
		tracing.RecordError(span, err)
		return nil, err
	}
	report.Due = len(due)

	order, byRecipient := groupByRecipient(due)
	report.Recipients = len(order)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.RecipientConcurrency)

	for _, userID := range order {
		rows := byRecipient[userID]
		g.Go(func() error {
			outcome := s.deliverRecipientSafely(ctx, userID, rows)
			mu.Lock()
			report.add(outcome)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(start)
	s.record(ctx, report, duration)
	tracing.RecordSweepResult(span, report.Due, report.Sent, report.Failed, report.Cancelled, report.Deferred, nil)

	if report.Due > 0 {
		slog.InfoContext(ctx, "delivery sweep completed",
			slog.String("run_id", report.RunID),
			slog.Int("due_count", report.Due),
			slog.Int("recipient_count", report.Recipients),
			slog.Int("sent_count", report.Sent),
			slog.Int("failed_count", report.Failed),
			slog.Int("cancelled_count", report.Cancelled),
			slog.Int("deferred_count", report.Deferred),
			slog.Duration("duration", duration),
		)
	}

	return report, nil
}

func groupByRecipient(rows []*domain.ScheduledNotification) ([]uuid.UUID, map[uuid.UUID][]*domain.ScheduledNotification) {
	var order []uuid.UUID
	grouped := make(map[uuid.UUID][]*domain.ScheduledNotification)
	for _, n := range rows {
		if _, ok := grouped[n.UserID]; !ok {
			order = append(order, n.UserID)
		}
		grouped[n.UserID] = append(grouped[n.UserID], n)
	}
	return order, grouped
}

func (s *Sweeper) record(ctx context.Context, report *Report, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordResolved(ctx, domain.NotificationStatusSent.String(), report.Sent)
		s.metrics.RecordResolved(ctx, domain.NotificationStatusFailed.String(), report.Failed)
		s.metrics.RecordResolved(ctx, domain.NotificationStatusCancelled.String(), report.Cancelled)
		s.metrics.RecordResolved(ctx, "deferred", report.Deferred)
		s.metrics.RecordSweepDuration(ctx, duration)
	}

	if s.recorder == nil || report.Due == 0 {
		return
	}
	if err := s.recorder.RecordSweep(ctx, domain.DeliverySweepRecord{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		Duration:   duration,
		Due:        report.Due,
		Sent:       report.Sent,
		Failed:     report.Failed,
		Cancelled:  report.Cancelled,
		Deferred:   report.Deferred,
		Recipients: report.Recipients,
	}); err != nil {
		slog.WarnContext(ctx, "failed to record delivery sweep",
			slog.String("run_id", report.RunID),
			slog.String("error", err.Error()),
		)
	}
}
