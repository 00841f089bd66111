package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/loan"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

const (
	loanColumns        = `id, principal, annual_rate, term_months, schedule, start_date, maturity_date, status, description`
	installmentColumns = `loan_id, seq, due_date, principal, interest, total, paid, status, late_fee, tax`
)

func (d *DB) CreateLoan(ctx context.Context, l model.Loan) (model.Loan, error) {
	_, err := d.db.ExecContext(ctx, `INSERT INTO loans (`+loanColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Principal.String(),
		l.AnnualRate.String(),
		l.TermMonths,
		string(l.Schedule),
		l.StartDate.Format(dateLayout),
		nullDate(l.MaturityDate),
		string(l.Status),
		l.Description,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("inserting loan %s: %w", l.ID, err)
	}
	return d.GetLoan(ctx, l.ID)
}

func (d *DB) GetLoan(ctx context.Context, loanID string) (model.Loan, error) {
	var (
		l                         model.Loan
		principal, rate, schedule string
		start, status             string
		maturity                  sql.NullString
	)
	err := d.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, loanID).Scan(
		&l.ID, &principal, &rate, &l.TermMonths, &schedule, &start, &maturity, &status, &l.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Loan{}, fmt.Errorf("%w: %s", loan.ErrNotFound, loanID)
	}
	if err != nil {
		return model.Loan{}, fmt.Errorf("querying loan %s: %w", loanID, err)
	}

	if l.Principal, err = decimal.NewFromString(principal); err != nil {
		return model.Loan{}, fmt.Errorf("loan %s: invalid principal: %w", loanID, err)
	}
	if l.AnnualRate, err = decimal.NewFromString(rate); err != nil {
		return model.Loan{}, fmt.Errorf("loan %s: invalid rate: %w", loanID, err)
	}
	if l.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return model.Loan{}, fmt.Errorf("loan %s: invalid start date: %w", loanID, err)
	}
	if maturity.Valid {
		m, err := time.Parse(dateLayout, maturity.String)
		if err != nil {
			return model.Loan{}, fmt.Errorf("loan %s: invalid maturity date: %w", loanID, err)
		}
		l.MaturityDate = &m
	}
	l.Schedule = model.ScheduleType(schedule)
	l.Status = model.LoanStatus(status)
	return l, nil
}

// CreateInstallments deletes the loan's installments and inserts schedule in
// one transaction.
func (d *DB) CreateInstallments(ctx context.Context, loanID string, schedule []model.Installment) error {
	return d.transaction(ctx, func(tx *sql.Tx) error {
		return replaceInstallments(ctx, tx, loanID, schedule)
	})
}

// ReplaceSchedule updates the loan's terms and swaps its installments in one
// transaction.
func (d *DB) ReplaceSchedule(ctx context.Context, l model.Loan, schedule []model.Installment) error {
	return d.transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE loans SET principal = ?, annual_rate = ?, term_months = ?, schedule = ?,
				start_date = ?, maturity_date = ?, status = ?, description = ?
			WHERE id = ?
		`,
			l.Principal.String(), l.AnnualRate.String(), l.TermMonths, string(l.Schedule),
			l.StartDate.Format(dateLayout), nullDate(l.MaturityDate), string(l.Status), l.Description,
			l.ID,
		)
		if err := checkUpdated(res, err, l.ID); err != nil {
			return err
		}
		return replaceInstallments(ctx, tx, l.ID, schedule)
	})
}

// ApplyPayment writes the paid installments and the loan status in one
// transaction.
func (d *DB) ApplyPayment(ctx context.Context, loanID string, updated []model.Installment, status model.LoanStatus) error {
	return d.transaction(ctx, func(tx *sql.Tx) error {
		for _, inst := range updated {
			res, err := tx.ExecContext(ctx, `
				UPDATE installments SET paid = ?, status = ?, late_fee = ?, tax = ?
				WHERE loan_id = ? AND seq = ?
			`, inst.Paid.String(), string(inst.Status), inst.LateFee.String(), inst.Tax.String(), loanID, inst.Seq)
			if err := checkUpdated(res, err, fmt.Sprintf("%s#%d", loanID, inst.Seq)); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `UPDATE loans SET status = ? WHERE id = ?`, string(status), loanID)
		return checkUpdated(res, err, loanID)
	})
}

func replaceInstallments(ctx context.Context, tx *sql.Tx, loanID string, schedule []model.Installment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM installments WHERE loan_id = ?`, loanID); err != nil {
		return fmt.Errorf("clearing installments of %s: %w", loanID, err)
	}
	for _, inst := range schedule {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO installments (`+installmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			loanID,
			inst.Seq,
			inst.DueDate.Format(dateLayout),
			inst.Principal.String(),
			inst.Interest.String(),
			inst.Total.String(),
			inst.Paid.String(),
			string(inst.Status),
			inst.LateFee.String(),
			inst.Tax.String(),
		); err != nil {
			return fmt.Errorf("inserting installment %d of %s: %w", inst.Seq, loanID, err)
		}
	}
	return nil
}

func (d *DB) ListInstallments(ctx context.Context, loanID string) ([]model.Installment, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE loan_id = ? ORDER BY seq`, loanID)
	if err != nil {
		return nil, fmt.Errorf("querying installments: %w", err)
	}
	defer rows.Close()

	var out []model.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func scanInstallment(s scanner) (model.Installment, error) {
	var (
		inst                             model.Installment
		due, status                      string
		principal, interest, total, paid string
		lateFee, tax                     string
	)
	if err := s.Scan(&inst.LoanID, &inst.Seq, &due, &principal, &interest, &total, &paid, &status, &lateFee, &tax); err != nil {
		return model.Installment{}, fmt.Errorf("scanning installment: %w", err)
	}

	var err error
	if inst.DueDate, err = time.Parse(dateLayout, due); err != nil {
		return model.Installment{}, fmt.Errorf("installment %d: invalid due date: %w", inst.Seq, err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&inst.Principal, principal},
		{&inst.Interest, interest},
		{&inst.Total, total},
		{&inst.Paid, paid},
		{&inst.LateFee, lateFee},
		{&inst.Tax, tax},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return model.Installment{}, fmt.Errorf("installment %d: invalid amount %q: %w", inst.Seq, f.src, err)
		}
	}
	inst.Status = model.InstallmentStatus(status)
	return inst, nil
}

func checkUpdated(res sql.Result, err error, key string) error {
	if err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", loan.ErrNotFound, key)
	}
	return nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

var _ loan.Store = (*DB)(nil)
