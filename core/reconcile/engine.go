package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payroll-monitor/core/records"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Engine reconciles payee records against a transfer source.
type Engine struct {
	store  records.Store
	source TransferSource
	cfg    Config
	logger *zap.Logger

	locks  *addressLocks
	flight singleflight.Group
	now    func() time.Time
}

// NewEngine creates an engine writing into store and reading from source.
func NewEngine(store records.Store, source TransferSource, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		source: source,
		cfg:    cfg,
		logger: logger,
		locks:  newAddressLocks(),
		now:    time.Now,
	}
}

// Check reconciles the record for address against its own expected amount.
func (e *Engine) Check(ctx context.Context, address string, now time.Time) (*Result, error) {
	rec, ok := e.store.Find(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}
	return e.Reconcile(ctx, rec.Address, rec.ExpectedAmount, now)
}

// Reconcile fetches the transfer history of address, selects the transfer that
// settles expected and writes the outcome into the store. A zero now means the
// current time. Fetch failures are reported through the result, not the error;
// the error is only set for an unknown address or an invalid amount, in which
// case the ledger is not contacted.
func (e *Engine) Reconcile(ctx context.Context, address string, expected decimal.Decimal, now time.Time) (*Result, error) {
	if expected.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, expected)
	}
	if now.IsZero() {
		now = e.now()
	}

	started, err := e.begin(address)
	if err != nil {
		return nil, err
	}
	l := e.logger.With(zap.String("address", started.Address))

	transfers, err := e.fetch(ctx, started.Address)
	if err != nil {
		l.Warn("Reconciliation check failed", zap.Error(err))
		res := &Result{
			Address: started.Address,
			Status:  records.StatusCheckFailed,
			Error:   err.Error(),
		}
		res.Discarded = !e.commit(started, func(rec *records.PayeeRecord) {
			rec.Status = records.StatusCheckFailed
		})
		return res, nil
	}

	match := SelectMatch(transfers, started.Address, expected, now, e.cfg.Decimals)
	res := buildResult(started.Address, match, expected)
	res.Discarded = !e.commit(started, res.apply)

	if res.Discarded {
		l.Info("Discarded reconciliation result after manual confirmation", zap.String("status", string(res.Status)))
	} else {
		l.Info("Reconciliation finished",
			zap.String("status", string(res.Status)),
			zap.String("tx_hash", res.TxHash),
			zap.Int("candidates", len(transfers)),
		)
	}
	return res, nil
}

// ManualConfirm marks address as paid outside the ledger. A zero at means now.
func (e *Engine) ManualConfirm(address string, at time.Time) (records.PayeeRecord, error) {
	if at.IsZero() {
		at = e.now()
	}

	unlock := e.locks.Lock(records.Key(address))
	defer unlock()

	rec, err := e.store.ManualConfirm(address, at)
	if errors.Is(err, records.ErrNotFound) {
		return records.PayeeRecord{}, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}
	if err != nil {
		return records.PayeeRecord{}, err
	}

	e.logger.Info("Manual confirmation recorded", zap.String("address", rec.Address))
	return rec, nil
}

// begin marks the record as being checked and returns its state afterwards.
func (e *Engine) begin(address string) (records.PayeeRecord, error) {
	unlock := e.locks.Lock(records.Key(address))
	defer unlock()

	rec, err := e.store.Update(address, func(rec *records.PayeeRecord) {
		rec.Status = records.StatusChecking
	})
	if errors.Is(err, records.ErrNotFound) {
		return records.PayeeRecord{}, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}
	return rec, err
}

// commit applies mutate unless the record changed underneath the check in a way
// that must win: a manual confirmation, or a batch reload that reset the record.
func (e *Engine) commit(started records.PayeeRecord, mutate records.Mutation) bool {
	unlock := e.locks.Lock(records.Key(started.Address))
	defer unlock()

	current, ok := e.store.Find(started.Address)
	if !ok || current.Generation != started.Generation {
		return false
	}
	if current.Revision != started.Revision && current.Status == records.StatusManualConfirmed {
		return false
	}

	_, err := e.store.Update(started.Address, mutate)
	return err == nil
}

func (e *Engine) fetch(ctx context.Context, address string) ([]Transfer, error) {
	v, err, _ := e.flight.Do(records.Key(address), func() (any, error) {
		fctx := ctx
		if e.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()
		}
		return e.source.Transfers(fctx, address)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return v.([]Transfer), nil
}

func buildResult(address string, match *Match, expected decimal.Decimal) *Result {
	if match == nil {
		return &Result{
			Address: address,
			Success: true,
			Status:  records.StatusNotFound,
		}
	}

	isCurrent := match.Bucket == BucketCurrent
	hasDiff := HasAmountDifference(match.Amount, expected)
	t := match.Transfer.BlockTime

	return &Result{
		Address:             address,
		Success:             true,
		Confirmed:           true,
		Status:              DeriveStatus(isCurrent, hasDiff),
		TxHash:              match.Transfer.Hash,
		Amount:              match.Amount,
		TxTime:              &t,
		IsCurrentMonth:      isCurrent,
		IsNonCurrentMonth:   !isCurrent,
		HasAmountDifference: hasDiff,
	}
}

// apply writes a successful outcome into rec.
func (r *Result) apply(rec *records.PayeeRecord) {
	rec.Status = r.Status
	rec.IsOtherCurrency = false
	rec.IsNonCurrentMonth = r.IsNonCurrentMonth
	rec.HasAmountDifference = r.HasAmountDifference

	if !r.Confirmed {
		rec.MatchedTxHash = ""
		rec.MatchedAmount = decimal.NullDecimal{}
		rec.MatchedTime = nil
		return
	}

	t := *r.TxTime
	rec.MatchedTxHash = r.TxHash
	rec.MatchedAmount = decimal.NewNullDecimal(r.Amount)
	rec.MatchedTime = &t
}
