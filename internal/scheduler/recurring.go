// Package scheduler runs the recurring billing cycle on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"
	"sumitpay/internal/repositories/cache"
	"sumitpay/internal/services/recurring"
	"sumitpay/internal/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const defaultLockTTL = 5 * time.Minute

// ErrRunInProgress is returned when a pass is already running in this process.
var ErrRunInProgress = errors.New("a recurring billing run is already in progress")

type Config struct {
	Schedule    string
	Concurrency int
	LockTTL     time.Duration
}

// Summary counts the outcome of one RunDue pass.
type Summary struct {
	Due     int `json:"due"`
	Charged int `json:"charged"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type RecurringScheduler struct {
	cron    *cron.Cron
	cfg     Config
	billing recurring.Service
	tokens  recurring.TokenSource
	locker  cache.Locker
	log     *logger.Logger
	now     func() time.Time
	cycles  *prometheus.CounterVec

	// running guards against overlapping ticks in this process.
	running sync.Mutex
}

func NewRecurringScheduler(
	cfg Config,
	billing recurring.Service,
	tokens recurring.TokenSource,
	locker cache.Locker,
	log *logger.Logger,
	reg prometheus.Registerer,
) *RecurringScheduler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	s := &RecurringScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		cfg:     cfg,
		billing: billing,
		tokens:  tokens,
		locker:  locker,
		log:     log,
		now:     time.Now,
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sumit_recurring_cycles_total",
			Help: "Recurring billing cycles by outcome",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(s.cycles)
	}
	return s
}

func (s *RecurringScheduler) Start() error {
	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		summary, err := s.RunDue(context.Background())
		if err != nil {
			s.log.Errorf("recurring billing run failed: %v", err)
			return
		}
		s.log.Infof("recurring billing run: due=%d charged=%d failed=%d skipped=%d",
			summary.Due, summary.Charged, summary.Failed, summary.Skipped)
	})
	if err != nil {
		return fmt.Errorf("invalid recurring schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.log.Infof("recurring billing scheduled (%s), next run %s",
		s.cfg.Schedule, s.cron.Entry(entryID).Next.Format(time.RFC3339))
	return nil
}

// Stop waits for a running job until ctx is done.
func (s *RecurringScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunDue charges every due subscription, at most Concurrency at a time. Each
// subscription is charged under its own lock so two runners never bill the
// same period.
func (s *RecurringScheduler) RunDue(ctx context.Context) (Summary, error) {
	if !s.running.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	now := s.now()
	due, err := s.billing.DueSubscriptions(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list due subscriptions: %w", err)
	}

	var (
		mu      sync.Mutex
		summary = Summary{Due: len(due)}
	)
	count := func(outcome string) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case "charged":
			summary.Charged++
		case "failed":
			summary.Failed++
		default:
			summary.Skipped++
		}
		s.cycles.WithLabelValues(outcome).Inc()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, sub := range due {
		id := sub.ID
		g.Go(func() error {
			count(s.runOne(gctx, id, now))
			return nil
		})
	}
	_ = g.Wait()
	return summary, nil
}

func (s *RecurringScheduler) runOne(ctx context.Context, id uint, now time.Time) string {
	release, ok, err := s.locker.Acquire(ctx, cache.SubscriptionLockKey(id), s.cfg.LockTTL)
	if err != nil {
		s.log.Errorf("subscription %d: lock failed: %v", id, err)
		return "skipped"
	}
	if !ok {
		s.log.Debugf("subscription %d is locked by another runner", id)
		return "skipped"
	}
	defer release()

	// Reload under the lock; another runner may have billed this period.
	sub, err := s.billing.GetSubscription(ctx, id, nil)
	if err != nil {
		s.log.Errorf("subscription %d: reload failed: %v", id, err)
		return "failed"
	}
	if !sub.IsActive() || sub.NextPaymentDate == nil || sub.NextPaymentDate.After(now) {
		return "skipped"
	}

	token, err := s.resolveToken(ctx, sub)
	if err != nil {
		s.log.Warnf("subscription %d: %v", id, err)
		return "failed"
	}

	result := s.billing.RunCycle(ctx, sub, token)
	if !result.Success {
		return "failed"
	}
	return "charged"
}

func (s *RecurringScheduler) resolveToken(ctx context.Context, sub *models.RecurringBilling) (*models.PaymentToken, error) {
	if sub.PaymentTokenID == nil {
		return nil, apperrors.ErrTokenNotFound.WithMessage("subscription has no payment token")
	}
	owner := sub.UserID
	return s.tokens.GetToken(ctx, *sub.PaymentTokenID, &owner)
}
