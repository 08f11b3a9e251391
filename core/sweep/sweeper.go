package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when a sweep is started while another one runs.
var ErrAlreadyRunning = errors.New("sweep already running")

// Checker reconciles a single address.
type Checker interface {
	Check(ctx context.Context, address string, now time.Time) (*reconcile.Result, error)
}

// ResultHook observes every completed check.
type ResultHook func(ctx context.Context, rec records.PayeeRecord, res *reconcile.Result)

// Progress describes the current or last sweep.
type Progress struct {
	RunID      string     `json:"run_id"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Confirmed  int        `json:"confirmed"`
	Failed     int        `json:"failed"`
	Running    bool       `json:"running"`
	Cancelled  bool       `json:"cancelled"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Sweeper runs bulk checks over the record store.
type Sweeper struct {
	store   records.Store
	checker Checker
	cfg     Config
	logger  *zap.Logger
	hook    ResultHook

	mu       sync.Mutex
	progress Progress
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a sweeper.
func New(store records.Store, checker Checker, cfg Config, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{store: store, checker: checker, cfg: cfg, logger: logger}
}

// OnResult registers a hook called after every check.
func (s *Sweeper) OnResult(hook ResultHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Start launches a sweep in the background and returns its initial progress.
// The sweep stops when ctx is cancelled or Cancel is called.
func (s *Sweeper) Start(ctx context.Context) (Progress, error) {
	ctx, tasks, err := s.begin(ctx)
	if err != nil {
		return Progress{}, err
	}
	started := s.Progress()
	go s.run(ctx, tasks)
	return started, nil
}

// Run performs a sweep and blocks until it finishes.
func (s *Sweeper) Run(ctx context.Context) (Progress, error) {
	ctx, tasks, err := s.begin(ctx)
	if err != nil {
		return Progress{}, err
	}
	s.run(ctx, tasks)
	return s.Progress(), nil
}

// Cancel stops the running sweep after its current check. It reports whether a sweep was running.
func (s *Sweeper) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.progress.Running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Progress returns a copy of the current progress.
func (s *Sweeper) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.progress
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		p.FinishedAt = &t
	}
	return p
}

// Wait blocks until the running sweep, if any, finishes.
func (s *Sweeper) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Sweeper) begin(ctx context.Context) (context.Context, []records.PayeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.Running {
		return nil, nil, ErrAlreadyRunning
	}

	tasks := s.store.All()
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.progress = Progress{
		RunID:     uuid.NewString(),
		Total:     len(tasks),
		Running:   true,
		StartedAt: time.Now().UTC(),
	}
	return ctx, tasks, nil
}

func (s *Sweeper) run(ctx context.Context, tasks []records.PayeeRecord) {
	l := s.logger.With(zap.String("run_id", s.Progress().RunID))
	l.Info("Sweep started", zap.Int("total", len(tasks)))

	var (
		failed    []records.PayeeRecord
		lastStart time.Time
	)

	for _, rec := range tasks {
		if !s.pace(ctx, &lastStart) {
			break
		}
		res, err := s.check(ctx, rec, l)
		s.update(func(p *Progress) {
			p.Processed++
			if err != nil || !res.Success {
				p.Failed++
			} else if res.Confirmed {
				p.Confirmed++
			}
		})
		if err == nil && !res.Success {
			failed = append(failed, rec)
		}
	}

	if s.cfg.RetryFailed && ctx.Err() == nil {
		for _, rec := range failed {
			if !s.pace(ctx, &lastStart) {
				break
			}
			l.Info("Retrying failed address", zap.String("address", rec.Address))
			res, err := s.check(ctx, rec, l)
			if err == nil && res.Success {
				s.update(func(p *Progress) {
					p.Failed--
					if res.Confirmed {
						p.Confirmed++
					}
				})
			}
		}
	}

	cancelled := ctx.Err() != nil
	s.mu.Lock()
	now := time.Now().UTC()
	s.progress.Running = false
	s.progress.Cancelled = cancelled
	s.progress.FinishedAt = &now
	s.cancel()
	close(s.done)
	final := s.progress
	s.mu.Unlock()

	l.Info("Sweep finished",
		zap.Int("processed", final.Processed),
		zap.Int("confirmed", final.Confirmed),
		zap.Int("failed", final.Failed),
		zap.Bool("cancelled", final.Cancelled))
}

// pace waits until Interval has passed since the previous start. It returns false
// when ctx is cancelled first.
func (s *Sweeper) pace(ctx context.Context, lastStart *time.Time) bool {
	if ctx.Err() != nil {
		return false
	}
	if !lastStart.IsZero() && s.cfg.Interval > 0 {
		if wait := s.cfg.Interval - time.Since(*lastStart); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return false
			case <-timer.C:
			}
		}
	}
	*lastStart = time.Now()
	return true
}

// check runs one reconciliation. A started check is not interrupted by cancellation.
// An error means the address left the store during the sweep.
func (s *Sweeper) check(ctx context.Context, rec records.PayeeRecord, l *zap.Logger) (*reconcile.Result, error) {
	cctx := context.WithoutCancel(ctx)
	res, err := s.checker.Check(cctx, rec.Address, time.Time{})
	if err != nil {
		l.Warn("Sweep skipped address", zap.String("address", rec.Address), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook(cctx, rec, res)
	}
	return res, nil
}

func (s *Sweeper) update(fn func(p *Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.progress)
}
