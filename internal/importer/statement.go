package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// StatementParser reads a bank statement export (date,description,amount
// with an optional category column). Positive amounts become cash receipts,
// negative ones cash disbursements; zero rows are skipped.
type StatementParser struct{}

const (
	stmtMinFields   = 3
	stmtColDate     = 0
	stmtColDesc     = 1
	stmtColAmount   = 2
	stmtColCategory = 3
)

// Format returns the parser name.
func (p *StatementParser) Format() string { return "statement" }

// Parse reads a statement CSV with a header row.
func (p *StatementParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < stmtMinFields {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", line, stmtMinFields, len(rec))
		}
		req, skip, err := parseStatementRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if skip {
			continue
		}
		rows = append(rows, Row{Line: line, Request: req})
	}
	return rows, nil
}

func parseStatementRow(rec []string) (model.TransactionRequest, bool, error) {
	dateStr := strings.TrimSpace(rec[stmtColDate])
	date, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return model.TransactionRequest{}, false, fmt.Errorf("parsing date %q: %w", dateStr, err)
	}
	amount, err := parseAmount(strings.TrimSpace(rec[stmtColAmount]))
	if err != nil {
		return model.TransactionRequest{}, false, err
	}
	if amount.IsZero() {
		return model.TransactionRequest{}, true, nil
	}

	req := model.TransactionRequest{
		Type:        string(model.TypeCashReceipt),
		PaymentMode: string(model.PaymentCash),
		Amount:      amount.Abs(),
		Date:        date,
		Description: strings.TrimSpace(rec[stmtColDesc]),
	}
	if amount.IsNegative() {
		req.Type = string(model.TypeCashDisbursement)
	}
	if len(rec) > stmtColCategory {
		req.Category = strings.TrimSpace(rec[stmtColCategory])
	}
	return req, false, nil
}
