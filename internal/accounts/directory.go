// Package accounts holds the chart of accounts, the filter lookup over it and
// placeholder provisioning for filters nothing matches.
package accounts

import (
	"context"
	"errors"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// ErrConflict is returned by Upsert when a concurrent writer created the same
// code first. The record exists; re-read it with Get.
var ErrConflict = errors.New("account code already provisioned concurrently")

// Directory is the account persistence the engine queries and writes through.
type Directory interface {
	// FindByAttributes returns every account matching all filter attributes.
	FindByAttributes(ctx context.Context, f model.Filter) ([]model.Account, error)
	// Get returns an account by code.
	Get(ctx context.Context, code string) (model.Account, bool, error)
	// Upsert inserts or replaces an account keyed by code and returns the stored record.
	Upsert(ctx context.Context, acct model.Account) (model.Account, error)
}
