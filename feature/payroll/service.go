package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"payroll-monitor/core/audit"
	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"
	"payroll-monitor/core/snapshot"
	"payroll-monitor/core/sweep"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoadReport describes the outcome of a batch load.
type LoadReport struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// Service coordinates the record store, the engine, the sweeper and persistence.
type Service struct {
	store     records.Store
	engine    *reconcile.Engine
	sweeper   *sweep.Sweeper
	snapshots *snapshot.Writer
	audit     *audit.Repository
	logger    *zap.Logger
	now       func() time.Time

	// Sweeps outlive the request that started them.
	baseCtx    context.Context
	baseCancel context.CancelFunc
	closeOnce  sync.Once
}

// NewService creates a payroll service. snapshots and auditRepo may be nil.
func NewService(store records.Store, engine *reconcile.Engine, sweeper *sweep.Sweeper, snapshots *snapshot.Writer, auditRepo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:      store,
		engine:     engine,
		sweeper:    sweeper,
		snapshots:  snapshots,
		audit:      auditRepo,
		logger:     logger,
		now:        time.Now,
		baseCtx:    ctx,
		baseCancel: cancel,
	}
	sweeper.OnResult(s.afterSweepCheck)
	return s
}

// Close cancels a running sweep and waits for it to stop.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		s.baseCancel()
		s.sweeper.Wait()
	})
}

// LoadBatch replaces the active record set.
func (s *Service) LoadBatch(ctx context.Context, req BatchRequest) LoadReport {
	loaded, skipped := s.store.LoadBatch(req.ToRecords())
	s.logger.Info("Batch loaded", zap.Int("loaded", loaded), zap.Int("skipped", skipped))
	s.persist(ctx)
	return LoadReport{Loaded: loaded, Skipped: skipped}
}

// Records returns every record in ingestion order.
func (s *Service) Records() []records.PayeeRecord {
	return s.store.All()
}

// Record returns the record for address.
func (s *Service) Record(address string) (records.PayeeRecord, error) {
	rec, ok := s.store.Find(address)
	if !ok {
		return records.PayeeRecord{}, fmt.Errorf("%w: %s", reconcile.ErrAddressNotFound, address)
	}
	return rec, nil
}

// Summary returns dashboard counts.
func (s *Service) Summary() records.Summary {
	return s.store.Summary()
}

// Check reconciles address against its recorded amount.
func (s *Service) Check(ctx context.Context, address string) (*reconcile.Result, error) {
	rec, err := s.Record(address)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, rec.Address, rec.ExpectedAmount)
}

// CheckAmount reconciles address against an explicit amount.
func (s *Service) CheckAmount(ctx context.Context, address string, expected decimal.Decimal) (*reconcile.Result, error) {
	return s.reconcile(ctx, address, expected)
}

func (s *Service) reconcile(ctx context.Context, address string, expected decimal.Decimal) (*reconcile.Result, error) {
	res, err := s.engine.Reconcile(ctx, address, expected, s.now())
	if err != nil {
		return nil, err
	}
	s.recordResult(ctx, res, expected, audit.SourceAuto)
	if !res.Discarded {
		s.persist(ctx)
	}
	return res, nil
}

// Confirm manually confirms address. A zero at means now.
func (s *Service) Confirm(ctx context.Context, address string, at time.Time) (records.PayeeRecord, error) {
	if at.IsZero() {
		at = s.now()
	}
	rec, err := s.engine.ManualConfirm(address, at)
	if err != nil {
		return records.PayeeRecord{}, err
	}

	entry := audit.FromRecord(rec, audit.SourceManual, s.now().UTC())
	s.recordEntry(ctx, &entry)
	s.persist(ctx)
	return rec, nil
}

// History returns the newest audit entries for address.
func (s *Service) History(ctx context.Context, address string, limit int) ([]audit.CheckEntry, error) {
	if _, err := s.Record(address); err != nil {
		return nil, err
	}
	return s.audit.ListByAddress(ctx, address, limit)
}

// StartSweep launches a background sweep.
func (s *Service) StartSweep() (sweep.Progress, error) {
	return s.sweeper.Start(s.baseCtx)
}

// RunSweep performs a sweep and blocks until it finishes.
func (s *Service) RunSweep(ctx context.Context) (sweep.Progress, error) {
	return s.sweeper.Run(ctx)
}

// SweepProgress returns the progress of the current or last sweep.
func (s *Service) SweepProgress() sweep.Progress {
	return s.sweeper.Progress()
}

// CancelSweep stops the running sweep after its current check.
func (s *Service) CancelSweep() bool {
	return s.sweeper.Cancel()
}

// Export writes all records as CSV.
func (s *Service) Export(w io.Writer) error {
	return WriteCSV(w, s.store.All())
}

func (s *Service) afterSweepCheck(ctx context.Context, rec records.PayeeRecord, res *reconcile.Result) {
	s.recordResult(ctx, res, rec.ExpectedAmount, audit.SourceSweep)
	if !res.Discarded {
		s.persist(ctx)
	}
}

func (s *Service) recordResult(ctx context.Context, res *reconcile.Result, expected decimal.Decimal, source audit.Source) {
	entry := audit.FromResult(res, expected, source, s.now().UTC())
	s.recordEntry(ctx, &entry)
}

func (s *Service) recordEntry(ctx context.Context, entry *audit.CheckEntry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record audit entry", zap.String("address", entry.Address), zap.Error(err))
	}
}

// persist writes a snapshot. Failures are logged by the writer and never fail the mutation.
func (s *Service) persist(ctx context.Context) {
	if err := s.snapshots.Persist(ctx, s.store); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("Snapshot incomplete", zap.Error(err))
	}
}
