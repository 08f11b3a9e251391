package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no record matches an address.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput is returned for rows missing an address or a positive expected amount.
	ErrInvalidInput = errors.New("invalid payee record")
)

// Status is the reconciliation state of a record.
type Status string

const (
	StatusPending                   Status = "pending"
	StatusConfirmed                 Status = "confirmed"
	StatusManualConfirmed           Status = "manual_confirmed"
	StatusAmountDifference          Status = "amount_difference"
	StatusNonCurrentMonthDifference Status = "non_current_month_difference"
	StatusNonCurrentMonthConfirmed  Status = "non_current_month_confirmed"
	StatusNotFound                  Status = "not_found"
	StatusCheckFailed               Status = "check_failed"
	StatusChecking                  Status = "checking"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusManualConfirmed,
	StatusAmountDifference,
	StatusNonCurrentMonthDifference,
	StatusNonCurrentMonthConfirmed,
	StatusNotFound,
	StatusCheckFailed,
	StatusChecking,
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsMatched reports whether s is an outcome backed by a ledger transfer.
func (s Status) IsMatched() bool {
	switch s {
	case StatusConfirmed, StatusAmountDifference, StatusNonCurrentMonthConfirmed, StatusNonCurrentMonthDifference:
		return true
	default:
		return false
	}
}

// PayeeRecord is a single expected disbursement and its current reconciliation state.
type PayeeRecord struct {
	// Identifier is an informational name or label.
	Identifier string `json:"identifier"`
	// Department is informational, carried through from ingestion.
	Department string `json:"department,omitempty"`
	// Address is the recipient ledger account. Matching is case-insensitive.
	Address string `json:"address"`
	// ExpectedAmount is the contractually owed amount.
	ExpectedAmount decimal.Decimal `json:"expected_amount"`

	Status Status `json:"status"`

	MatchedTxHash string              `json:"matched_tx_hash,omitempty"`
	MatchedAmount decimal.NullDecimal `json:"matched_amount"`
	MatchedTime   *time.Time          `json:"matched_time,omitempty"`

	// IsOtherCurrency is set only by a manual confirmation.
	IsOtherCurrency     bool `json:"is_other_currency"`
	IsNonCurrentMonth   bool `json:"is_non_current_month"`
	HasAmountDifference bool `json:"has_amount_difference"`

	// Revision increases on every state change.
	Revision uint64 `json:"revision"`
	// Generation identifies the load that produced the record. Every LoadBatch
	// and Restore starts a new one, so it never repeats within a process.
	Generation uint64 `json:"-"`
}

// Validate checks the ingestion requirements for a record.
func (r PayeeRecord) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("%w: missing address", ErrInvalidInput)
	}
	if !r.ExpectedAmount.IsPositive() {
		return fmt.Errorf("%w: expected amount must be positive", ErrInvalidInput)
	}
	return nil
}

// Mutation changes a record in place.
type Mutation func(rec *PayeeRecord)

// Summary aggregates record counts for dashboards.
type Summary struct {
	Total     int            `json:"total"`
	Confirmed int            `json:"confirmed"`
	Pending   int            `json:"pending"`
	ByStatus  map[Status]int `json:"by_status"`
}
