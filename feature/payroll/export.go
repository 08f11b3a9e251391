package payroll

import (
	"encoding/csv"
	"io"
	"time"

	"payroll-monitor/core/records"
)

var exportHeader = []string{
	"name", "department", "expected_amount", "address",
	"status", "tx_hash", "matched_amount", "tx_time",
}

// WriteCSV writes recs as CSV in ingestion order.
func WriteCSV(w io.Writer, recs []records.PayeeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, rec := range recs {
		matched := ""
		if rec.MatchedAmount.Valid {
			matched = rec.MatchedAmount.Decimal.String()
		}
		txTime := ""
		if rec.MatchedTime != nil {
			txTime = rec.MatchedTime.UTC().Format(time.RFC3339)
		}
		row := []string{
			rec.Identifier,
			rec.Department,
			rec.ExpectedAmount.String(),
			rec.Address,
			string(rec.Status),
			rec.MatchedTxHash,
			matched,
			txTime,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
