package records

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the record collection used by the engine and the HTTP features.
type Store interface {
	// LoadBatch replaces the active set with freshly ingested rows in StatusPending.
	// Invalid rows and repeated addresses are skipped.
	LoadBatch(rows []PayeeRecord) (loaded, skipped int)
	// Restore replaces the active set from a snapshot, keeping reconciliation state.
	Restore(rows []PayeeRecord) (loaded, skipped int)
	// Find returns a copy of the record for address.
	Find(address string) (PayeeRecord, bool)
	// All returns copies of every record in ingestion order.
	All() []PayeeRecord
	// Update applies mutate to the record for address.
	Update(address string, mutate Mutation) (PayeeRecord, error)
	// ManualConfirm marks the record as paid outside the ledger.
	ManualConfirm(address string, at time.Time) (PayeeRecord, error)
	// Summary returns dashboard counts.
	Summary() Summary
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu    sync.RWMutex
	gen   uint64
	order []string
	index map[string]*PayeeRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]*PayeeRecord)}
}

// Key normalizes an address for lookups.
func Key(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// LoadBatch implements Store.
func (s *MemoryStore) LoadBatch(rows []PayeeRecord) (int, int) {
	return s.replace(rows, func(rec *PayeeRecord) {
		*rec = PayeeRecord{
			Identifier:     rec.Identifier,
			Department:     rec.Department,
			Address:        strings.TrimSpace(rec.Address),
			ExpectedAmount: rec.ExpectedAmount,
			Status:         StatusPending,
		}
	})
}

// Restore implements Store.
func (s *MemoryStore) Restore(rows []PayeeRecord) (int, int) {
	return s.replace(rows, func(rec *PayeeRecord) {
		rec.Address = strings.TrimSpace(rec.Address)
		if !rec.Status.IsValid() {
			rec.Status = StatusPending
		}
		// A check cannot survive a restart.
		if rec.Status == StatusChecking {
			rec.Status = StatusPending
		}
	})
}

func (s *MemoryStore) replace(rows []PayeeRecord, prepare func(rec *PayeeRecord)) (int, int) {
	order := make([]string, 0, len(rows))
	index := make(map[string]*PayeeRecord, len(rows))
	skipped := 0

	for _, row := range rows {
		if err := row.Validate(); err != nil {
			skipped++
			continue
		}
		k := Key(row.Address)
		if _, dup := index[k]; dup {
			skipped++
			continue
		}
		rec := clone(&row)
		prepare(&rec)
		index[k] = &rec
		order = append(order, k)
	}

	s.mu.Lock()
	s.gen++
	for _, rec := range index {
		rec.Generation = s.gen
	}
	s.order = order
	s.index = index
	s.mu.Unlock()

	return len(order), skipped
}

// Find implements Store.
func (s *MemoryStore) Find(address string) (PayeeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.index[Key(address)]
	if !ok {
		return PayeeRecord{}, false
	}
	return clone(rec), true
}

// All implements Store.
func (s *MemoryStore) All() []PayeeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PayeeRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, clone(s.index[k]))
	}
	return out
}

// Update implements Store. The address, generation and revision cannot be changed by mutate.
func (s *MemoryStore) Update(address string, mutate Mutation) (PayeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.index[Key(address)]
	if !ok {
		return PayeeRecord{}, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	next := clone(rec)
	mutate(&next)
	next.Address = rec.Address
	next.Generation = rec.Generation
	next.Revision = rec.Revision + 1
	*rec = next

	return clone(rec), nil
}

// ManualConfirm implements Store. Repeating the call with the same time leaves the
// record, including its revision, unchanged.
func (s *MemoryStore) ManualConfirm(address string, at time.Time) (PayeeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.index[Key(address)]
	if !ok {
		return PayeeRecord{}, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	next := clone(rec)
	ApplyManualConfirm(&next, at)
	if !sameState(*rec, next) {
		next.Revision = rec.Revision + 1
		*rec = next
	}

	return clone(rec), nil
}

// Summary implements Store.
func (s *MemoryStore) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		Total:    len(s.order),
		ByStatus: make(map[Status]int, len(Statuses)),
	}
	for _, k := range s.order {
		sum.ByStatus[s.index[k].Status]++
	}
	sum.Confirmed = sum.ByStatus[StatusConfirmed]
	sum.Pending = sum.Total - sum.Confirmed
	return sum
}

// ApplyManualConfirm sets the manual-confirmation state on rec.
func ApplyManualConfirm(rec *PayeeRecord, at time.Time) {
	t := at
	rec.Status = StatusManualConfirmed
	rec.IsOtherCurrency = true
	rec.MatchedTxHash = ""
	rec.MatchedAmount = decimal.NewNullDecimal(rec.ExpectedAmount)
	rec.MatchedTime = &t
	rec.IsNonCurrentMonth = false
	rec.HasAmountDifference = false
}

func clone(rec *PayeeRecord) PayeeRecord {
	out := *rec
	if rec.MatchedTime != nil {
		t := *rec.MatchedTime
		out.MatchedTime = &t
	}
	return out
}

func sameState(a, b PayeeRecord) bool {
	if a.Status != b.Status ||
		a.MatchedTxHash != b.MatchedTxHash ||
		a.IsOtherCurrency != b.IsOtherCurrency ||
		a.IsNonCurrentMonth != b.IsNonCurrentMonth ||
		a.HasAmountDifference != b.HasAmountDifference {
		return false
	}
	if a.MatchedAmount.Valid != b.MatchedAmount.Valid ||
		(a.MatchedAmount.Valid && !a.MatchedAmount.Decimal.Equal(b.MatchedAmount.Decimal)) {
		return false
	}
	if (a.MatchedTime == nil) != (b.MatchedTime == nil) {
		return false
	}
	return a.MatchedTime == nil || a.MatchedTime.Equal(*b.MatchedTime)
}
