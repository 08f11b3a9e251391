package reconcile

import (
	"errors"
	"time"

	"payroll-monitor/core/records"

	"github.com/shopspring/decimal"
)

var (
	// ErrAddressNotFound is returned when the store has no record for an address.
	ErrAddressNotFound = errors.New("address not found")
	// ErrFetchFailed wraps any failure of the transfer source.
	ErrFetchFailed = errors.New("ledger fetch failed")
	// ErrInvalidAmount is returned for a negative expected amount.
	ErrInvalidAmount = errors.New("expected amount must not be negative")
)

// Config holds engine settings.
type Config struct {
	// Decimals is the token's fixed decimal scale used to normalize raw amounts.
	Decimals int32 `mapstructure:"decimals" default:"6"`
	// FetchTimeout bounds a single ledger fetch. Zero disables the bound.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" default:"20s"`
}

// Transfer is a single token movement as reported by the ledger.
type Transfer struct {
	// Recipient is the receiving address.
	Recipient string
	// RawAmount is the integer amount in the token's smallest unit.
	RawAmount decimal.Decimal
	// BlockTime is the ledger time of the transfer.
	BlockTime time.Time
	// Hash is the transaction hash.
	Hash string
}

// Bucket is the month bucket of a candidate transfer.
type Bucket int

const (
	BucketCurrent Bucket = iota
	BucketNonCurrent
)

func (b Bucket) String() string {
	if b == BucketCurrent {
		return "current"
	}
	return "non_current"
}

// Fit is how closely a transfer amount fits the expected amount.
type Fit int

const (
	FitNone Fit = iota
	FitExact
	FitClose
)

func (f Fit) String() string {
	switch f {
	case FitExact:
		return "exact"
	case FitClose:
		return "close"
	default:
		return "none"
	}
}

// Match is the transfer selected for an expected payment.
type Match struct {
	Transfer Transfer
	// Amount is the normalized transfer amount.
	Amount decimal.Decimal
	Bucket Bucket
	Fit    Fit
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Address string `json:"address"`

	// Success is false when the ledger could not be read.
	Success bool `json:"success"`
	// Confirmed is true when a transfer was matched.
	Confirmed bool           `json:"confirmed"`
	Status    records.Status `json:"status"`

	TxHash string          `json:"tx_hash"`
	Amount decimal.Decimal `json:"amount"`
	TxTime *time.Time      `json:"tx_time"`

	IsCurrentMonth      bool `json:"is_current_month"`
	IsNonCurrentMonth   bool `json:"is_non_current_month"`
	HasAmountDifference bool `json:"has_amount_difference"`

	// Discarded is true when the outcome was not written because a manual
	// confirmation happened while the fetch was in flight.
	Discarded bool `json:"discarded"`

	Error string `json:"error,omitempty"`
}
