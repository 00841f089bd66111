package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerengine/internal/accounts"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

const accountColumns = `code, name, type, attributes, active, placeholder, description`

// FindByAttributes returns every account carrying all attributes in f,
// ordered by code.
func (d *DB) FindByAttributes(ctx context.Context, f model.Filter) ([]model.Account, error) {
	all, err := d.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Account
	for _, a := range all {
		if a.Matches(f) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Accounts returns the whole chart of accounts ordered by code.
func (d *DB) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns the account with the given code.
func (d *DB) Get(ctx context.Context, code string) (model.Account, bool, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, err
	}
	return a, true, nil
}

// Upsert inserts acct or replaces the non-key fields of the existing record.
func (d *DB) Upsert(ctx context.Context, acct model.Account) (model.Account, error) {
	if acct.Code == "" {
		return model.Account{}, fmt.Errorf("upsert account: empty code")
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			attributes = excluded.attributes,
			active = excluded.active,
			placeholder = excluded.placeholder,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`,
		acct.Code,
		acct.Name,
		string(acct.Type),
		model.FormatAttributes(acct.Attributes),
		acct.Active,
		acct.Placeholder,
		acct.Description,
	)
	if isConstraint(err) {
		return model.Account{}, fmt.Errorf("upsert account %s: %w", acct.Code, accounts.ErrConflict)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("upsert account %s: %w", acct.Code, err)
	}

	stored, _, err := d.Get(ctx, acct.Code)
	return stored, err
}

// SeedAccounts inserts the given accounts, leaving existing codes untouched.
func (d *DB) SeedAccounts(ctx context.Context, accts []model.Account) (int, error) {
	inserted := 0
	err := d.transaction(ctx, func(tx *sql.Tx) error {
		for _, a := range accts {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (`+accountColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(code) DO NOTHING
			`, a.Code, a.Name, string(a.Type), model.FormatAttributes(a.Attributes), a.Active, a.Placeholder, a.Description)
			if err != nil {
				return fmt.Errorf("seeding account %s: %w", a.Code, err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	return inserted, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (model.Account, error) {
	var (
		a     model.Account
		typ   string
		attrs string
	)
	if err := s.Scan(&a.Code, &a.Name, &typ, &attrs, &a.Active, &a.Placeholder, &a.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, err
		}
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	a.Type = model.AccountType(typ)
	a.Attributes = model.ParseAttributes(attrs)
	return a, nil
}

var _ accounts.Directory = (*DB)(nil)
