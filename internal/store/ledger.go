package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/id"
	"github.com/cleared-dev/ledgerengine/internal/journal"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Append stores postings as one balanced entry and returns its ID. The entry
// is numbered within the month of its first posting.
func (d *DB) Append(ctx context.Context, postings []model.Posting) (string, error) {
	if len(postings) == 0 {
		return "", errors.New("appending entry: no postings")
	}
	if err := journal.CheckBalanced(postings); err != nil {
		return "", fmt.Errorf("appending entry: %w", err)
	}

	first := postings[0]
	year, month := first.Date.Year(), int(first.Date.Month())
	period := fmt.Sprintf("%04d%02d", year, month)

	var entryID string
	err := d.transaction(ctx, func(tx *sql.Tx) error {
		ids, err := entryIDs(ctx, tx, period)
		if err != nil {
			return err
		}
		entryID = id.FormatEntryID(year, month, id.NextSeq(ids, year, month))

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (entry_id, period, date, type) VALUES (?, ?, ?, ?)`,
			entryID, period, first.Date.Format(dateLayout), string(first.Type),
		); err != nil {
			return fmt.Errorf("inserting entry %s: %w", entryID, err)
		}

		for i, p := range postings {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO postings (entry_id, line, account_code, account_name, side, amount, description)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, entryID, i+1, p.AccountCode, p.AccountName, string(p.Side), p.Amount.StringFixed(2), p.Description); err != nil {
				return fmt.Errorf("inserting posting %d of %s: %w", i+1, entryID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return entryID, nil
}

func entryIDs(ctx context.Context, tx *sql.Tx, period string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT entry_id FROM entries WHERE period = ?`, period)
	if err != nil {
		return nil, fmt.Errorf("querying entry ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning entry id: %w", err)
		}
		ids = append(ids, s)
	}
	return ids, rows.Err()
}

// Postings returns every posting committed in the given month, ordered by
// entry and line.
func (d *DB) Postings(ctx context.Context, year, month int) ([]model.Posting, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT p.entry_id, e.date, e.type, p.account_code, p.account_name, p.side, p.amount, p.description
		FROM postings p
		JOIN entries e ON e.entry_id = p.entry_id
		WHERE e.period = ?
		ORDER BY p.entry_id, p.line
	`, fmt.Sprintf("%04d%02d", year, month))
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	var out []model.Posting
	for rows.Next() {
		var (
			p                       model.Posting
			date, typ, side, amount string
		)
		if err := rows.Scan(&p.EntryID, &date, &typ, &p.AccountCode, &p.AccountName, &side, &amount, &p.Description); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("entry %s: invalid date %q: %w", p.EntryID, date, err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s: invalid amount %q: %w", p.EntryID, amount, err)
		}
		p.Type = model.TransactionType(typ)
		p.Side = model.Side(side)
		out = append(out, p)
	}
	return out, rows.Err()
}
