package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// DateFormat is the date layout of every importer format.
const DateFormat = "2006-01-02"

// RequestParser reads the native request format. Columns are matched by
// header name, in any order; only type, amount and date are required.
//
//	type,payment_mode,amount,date,category,description,source_account,dest_account,cost_basis
type RequestParser struct{}

const (
	colType          = "type"
	colPaymentMode   = "payment_mode"
	colAmount        = "amount"
	colDate          = "date"
	colCategory      = "category"
	colDescription   = "description"
	colSourceAccount = "source_account"
	colDestAccount   = "dest_account"
	colCostBasis     = "cost_basis"
)

var requiredColumns = []string{colType, colAmount, colDate}

// Format returns the parser name.
func (p *RequestParser) Format() string { return "requests" }

// Parse reads the CSV. Field values are only syntax-checked here; the engine
// validates the request itself.
func (p *RequestParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading requests CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("requests CSV: missing %q column", c)
		}
	}

	var rows []Row
	for i, rec := range records[1:] {
		get := func(name string) string {
			if idx, ok := cols[name]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}
		req, err := parseRequestRow(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, Row{Line: i + 2, Request: req})
	}
	return rows, nil
}

func parseRequestRow(get func(string) string) (model.TransactionRequest, error) {
	req := model.TransactionRequest{
		Type:          get(colType),
		PaymentMode:   get(colPaymentMode),
		Category:      get(colCategory),
		Description:   get(colDescription),
		SourceAccount: get(colSourceAccount),
		DestAccount:   get(colDestAccount),
	}

	var err error
	if req.Amount, err = parseAmount(get(colAmount)); err != nil {
		return req, err
	}
	if req.CostBasis, err = parseAmount(get(colCostBasis)); err != nil {
		return req, err
	}
	if s := get(colDate); s != "" {
		if req.Date, err = time.Parse(DateFormat, s); err != nil {
			return req, fmt.Errorf("parsing date %q: %w", s, err)
		}
	}
	return req, nil
}

// parseAmount accepts "1,000,000.50" style thousands separators. Empty is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
