package audit

import (
	"time"

	"payroll-monitor/core/reconcile"
	"payroll-monitor/core/records"

	"github.com/shopspring/decimal"
)

// Source identifies what triggered an entry.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
	SourceSweep  Source = "sweep"
)

// CheckEntry is one row of check history.
type CheckEntry struct {
	ID            string              `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Address       string              `gorm:"column:address;index;type:varchar(64);not null" json:"address"`
	Source        Source              `gorm:"column:source;type:varchar(16);not null" json:"source"`
	Status        records.Status      `gorm:"column:status;type:varchar(40);not null" json:"status"`
	Expected      decimal.Decimal     `gorm:"column:expected;type:decimal(36,6)" json:"expected"`
	MatchedAmount decimal.NullDecimal `gorm:"column:matched_amount;type:decimal(36,6)" json:"matched_amount"`
	TxHash        string              `gorm:"column:tx_hash;type:varchar(80)" json:"tx_hash,omitempty"`
	TxTime        *time.Time          `gorm:"column:tx_time" json:"tx_time,omitempty"`
	Discarded     bool                `gorm:"column:discarded" json:"discarded"`
	Error         string              `gorm:"column:error;type:text" json:"error,omitempty"`
	CheckedAt     time.Time           `gorm:"column:checked_at;index" json:"checked_at"`
}

// TableName overrides the table name.
func (CheckEntry) TableName() string {
	return "check_entries"
}

// FromResult builds an entry for a reconciliation outcome.
func FromResult(res *reconcile.Result, expected decimal.Decimal, source Source, at time.Time) CheckEntry {
	entry := CheckEntry{
		Address:   records.Key(res.Address),
		Source:    source,
		Status:    res.Status,
		Expected:  expected,
		TxHash:    res.TxHash,
		TxTime:    res.TxTime,
		Discarded: res.Discarded,
		Error:     res.Error,
		CheckedAt: at,
	}
	if res.Confirmed {
		entry.MatchedAmount = decimal.NewNullDecimal(res.Amount)
	}
	return entry
}

// FromRecord builds an entry from a record state, used for manual confirmations.
func FromRecord(rec records.PayeeRecord, source Source, at time.Time) CheckEntry {
	return CheckEntry{
		Address:       records.Key(rec.Address),
		Source:        source,
		Status:        rec.Status,
		Expected:      rec.ExpectedAmount,
		MatchedAmount: rec.MatchedAmount,
		TxHash:        rec.MatchedTxHash,
		TxTime:        rec.MatchedTime,
		CheckedAt:     at,
	}
}
