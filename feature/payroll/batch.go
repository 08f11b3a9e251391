package payroll

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"payroll-monitor/core/records"

	"github.com/shopspring/decimal"
)

// RecordInput is one ingestion row.
type RecordInput struct {
	Name           string          `json:"name"`
	Department     string          `json:"department"`
	Address        string          `json:"address"`
	ExpectedAmount decimal.Decimal `json:"expected_amount" swaggertype:"string" example:"100.5"`
}

// BatchRequest is the body of a batch load.
type BatchRequest struct {
	Records []RecordInput `json:"records"`
}

// ToRecords converts the inputs to store rows. Validation happens in the store.
func (b BatchRequest) ToRecords() []records.PayeeRecord {
	rows := make([]records.PayeeRecord, 0, len(b.Records))
	for _, in := range b.Records {
		rows = append(rows, records.PayeeRecord{
			Identifier:     strings.TrimSpace(in.Name),
			Department:     strings.TrimSpace(in.Department),
			Address:        strings.TrimSpace(in.Address),
			ExpectedAmount: in.ExpectedAmount,
		})
	}
	return rows
}

// ParseBatchJSON reads a batch either as {"records": [...]} or as a bare array.
func ParseBatchJSON(r io.Reader) (BatchRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return BatchRequest{}, err
	}
	trimmed := strings.TrimSpace(string(data))

	var req BatchRequest
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &req.Records)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return BatchRequest{}, fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
	}
	return req, nil
}

// ParseBatchCSV reads a batch from CSV with a header row. Recognized columns are
// name, department, expected (or expected_amount) and address, in any order.
// Rows with an unparseable amount are kept with a zero amount so the store skips them.
func ParseBatchCSV(r io.Reader) (BatchRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return BatchRequest{}, nil
	}
	if err != nil {
		return BatchRequest{}, fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
	}

	cols := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key == "expected_amount" {
			key = "expected"
		}
		cols[key] = i
	}
	if _, ok := cols["address"]; !ok {
		return BatchRequest{}, fmt.Errorf("%w: csv header lacks an address column", records.ErrInvalidInput)
	}
	if _, ok := cols["expected"]; !ok {
		return BatchRequest{}, fmt.Errorf("%w: csv header lacks an expected column", records.ErrInvalidInput)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var req BatchRequest
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return BatchRequest{}, fmt.Errorf("%w: %v", records.ErrInvalidInput, err)
		}
		amount, err := decimal.NewFromString(field(row, "expected"))
		if err != nil {
			amount = decimal.Zero
		}
		req.Records = append(req.Records, RecordInput{
			Name:           field(row, "name"),
			Department:     field(row, "department"),
			Address:        field(row, "address"),
			ExpectedAmount: amount,
		})
	}
	return req, nil
}
