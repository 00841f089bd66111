// Package store persists accounts, ledger entries and loans in SQLite.
package store

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    attributes TEXT NOT NULL DEFAULT '',  -- k=v;k=v
    active INTEGER NOT NULL DEFAULT 1,
    placeholder INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
    entry_id TEXT PRIMARY KEY,            -- JE-YYYYMM-NNNN
    period TEXT NOT NULL,                 -- YYYYMM
    date TEXT NOT NULL,                   -- YYYY-MM-DD
    type TEXT NOT NULL,
    committed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_period ON entries(period);

CREATE TABLE IF NOT EXISTS postings (
    entry_id TEXT NOT NULL REFERENCES entries(entry_id),
    line INTEGER NOT NULL,
    account_code TEXT NOT NULL,
    account_name TEXT NOT NULL,
    side TEXT NOT NULL CHECK (side IN ('debit', 'credit')),
    amount TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (entry_id, line)
);

CREATE TABLE IF NOT EXISTS loans (
    id TEXT PRIMARY KEY,
    principal TEXT NOT NULL,
    annual_rate TEXT NOT NULL,
    term_months INTEGER NOT NULL,
    schedule TEXT NOT NULL,
    start_date TEXT NOT NULL,
    maturity_date TEXT,
    status TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS installments (
    loan_id TEXT NOT NULL REFERENCES loans(id),
    seq INTEGER NOT NULL,
    due_date TEXT NOT NULL,
    principal TEXT NOT NULL,
    interest TEXT NOT NULL,
    total TEXT NOT NULL,
    paid TEXT NOT NULL,
    status TEXT NOT NULL,
    late_fee TEXT NOT NULL,
    tax TEXT NOT NULL,
    PRIMARY KEY (loan_id, seq)
);
`

const dateLayout = "2006-01-02"
