package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,date,type,account_code,account_name,description,debit,credit"

const (
	numFields   = 8
	dateFormat  = "2006-01-02"
	colEntryID  = 0
	colDate     = 1
	colType     = 2
	colAcctCode = 3
	colAcctName = 4
	colDesc     = 5
	colDebit    = 6
	colCredit   = 7
)

// ReadPostings reads all postings from a journal.csv reader.
func ReadPostings(r io.Reader) ([]model.Posting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var postings []model.Posting
	for i, rec := range records[1:] {
		p, err := UnmarshalPosting(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// WritePostings writes postings to a journal.csv writer (including header).
func WritePostings(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range postings {
		if err := cw.Write(MarshalPosting(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendPostings appends postings to an existing journal.csv writer (no header).
func AppendPostings(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)

	for i, p := range postings {
		if err := cw.Write(MarshalPosting(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalPosting converts a Posting to a CSV row.
func MarshalPosting(p model.Posting) []string {
	row := make([]string, numFields)
	row[colEntryID] = p.EntryID
	row[colDate] = p.Date.Format(dateFormat)
	row[colType] = string(p.Type)
	row[colAcctCode] = p.AccountCode
	row[colAcctName] = p.AccountName
	row[colDesc] = p.Description
	if p.IsDebit() {
		row[colDebit] = p.Amount.StringFixed(2)
	} else {
		row[colCredit] = p.Amount.StringFixed(2)
	}
	return row
}

// UnmarshalPosting converts a CSV row to a Posting.
func UnmarshalPosting(record []string) (model.Posting, error) {
	if len(record) != numFields {
		return model.Posting{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	hasDebit := record[colDebit] != ""
	hasCredit := record[colCredit] != ""
	if hasDebit == hasCredit {
		return model.Posting{}, fmt.Errorf("row must have exactly one of debit or credit")
	}

	side, raw := model.SideDebit, record[colDebit]
	if hasCredit {
		side, raw = model.SideCredit, record[colCredit]
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing %s %q: %w", side, raw, err)
	}

	return model.Posting{
		EntryID:     record[colEntryID],
		Date:        date,
		Type:        model.TransactionType(record[colType]),
		AccountCode: record[colAcctCode],
		AccountName: record[colAcctName],
		Description: record[colDesc],
		Side:        side,
		Amount:      amount,
	}, nil
}
