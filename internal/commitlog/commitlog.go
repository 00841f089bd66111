// Package commitlog records committed ledger entries to logs/commit-log.csv.
package commitlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/engine"
	"github.com/cleared-dev/ledgerengine/internal/journal"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Entry is one row in the commit log.
type Entry struct {
	Timestamp time.Time
	EntryID   string
	Type      model.TransactionType
	Date      time.Time
	Lines     int
	Amount    decimal.Decimal // debit total
}

// Header is the CSV header for commit-log.csv.
const Header = "timestamp,entry_id,type,date,lines,amount"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "logs/commit-log.csv"
	dateFormat   = "2006-01-02"
	colTimestamp = 0
	colEntryID   = 1
	colType      = 2
	colDate      = 3
	colLines     = 4
	colAmount    = 5
)

// FromEvent builds the log entry for a commit event.
func FromEvent(ev engine.CommitEvent, at time.Time) Entry {
	e := Entry{
		Timestamp: at,
		EntryID:   ev.EntryID,
		Type:      ev.Type,
		Lines:     len(ev.Postings),
	}
	if len(ev.Postings) > 0 {
		e.Date = ev.Postings[0].Date
	}
	e.Amount, _ = journal.Totals(ev.Postings)
	return e
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colEntryID] = e.EntryID
	row[colType] = string(e.Type)
	if !e.Date.IsZero() {
		row[colDate] = e.Date.Format(dateFormat)
	}
	row[colLines] = strconv.Itoa(e.Lines)
	row[colAmount] = e.Amount.StringFixed(2)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	var date time.Time
	if record[colDate] != "" {
		if date, err = time.Parse(dateFormat, record[colDate]); err != nil {
			return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}
	lines, err := strconv.Atoi(record[colLines])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing lines %q: %w", record[colLines], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return Entry{
		Timestamp: ts,
		EntryID:   record[colEntryID],
		Type:      model.TransactionType(record[colType]),
		Date:      date,
		Lines:     lines,
		Amount:    amount,
	}, nil
}

// Append writes entries to <root>/logs/commit-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening commit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/commit-log.csv, or nil if the
// file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening commit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading commit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
