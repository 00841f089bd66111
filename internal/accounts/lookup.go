package accounts

import (
	"context"
	"fmt"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Lookup returns the active account matching f with the lowest code. When
// nothing matches and f narrows by category, the category is dropped and the
// search retried once. A miss is reported with found=false, not an error.
func Lookup(ctx context.Context, dir Directory, f model.Filter) (acct model.Account, found bool, err error) {
	acct, found, err = lookupExact(ctx, dir, f)
	if err != nil || found {
		return acct, found, err
	}
	if _, ok := f[model.AttrCategory]; ok {
		return lookupExact(ctx, dir, f.Without(model.AttrCategory))
	}
	return model.Account{}, false, nil
}

func lookupExact(ctx context.Context, dir Directory, f model.Filter) (model.Account, bool, error) {
	candidates, err := dir.FindByAttributes(ctx, f)
	if err != nil {
		return model.Account{}, false, fmt.Errorf("finding accounts for %s: %w", f, err)
	}

	var best model.Account
	found := false
	for _, a := range candidates {
		if !a.Active || !a.Matches(f) {
			continue
		}
		if !found || a.Code < best.Code {
			best = a
			found = true
		}
	}
	return best, found, nil
}
