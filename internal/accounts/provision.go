package accounts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cleared-dev/ledgerengine/internal/logging"
	"github.com/cleared-dev/ledgerengine/internal/metrics"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Placeholder describes the synthetic account created for a missing role.
type Placeholder struct {
	Code string
	Name string
	Type model.AccountType
}

// PlaceholderFor returns the fixed placeholder for a usage role. Unknown roles
// fall back to the generic revenue placeholder.
func PlaceholderFor(role string) Placeholder {
	switch role {
	case model.RoleCash:
		return Placeholder{"1190", "Cash (placeholder)", model.AccountTypeAsset}
	case model.RoleReceivable:
		return Placeholder{"1290", "Receivables (placeholder)", model.AccountTypeAsset}
	case model.RoleInventory:
		return Placeholder{"1390", "Inventory (placeholder)", model.AccountTypeAsset}
	case model.RolePayable:
		return Placeholder{"2190", "Liabilities (placeholder)", model.AccountTypeLiability}
	case model.RoleLoanPayable:
		return Placeholder{"2290", "Loans Payable (placeholder)", model.AccountTypeLiability}
	case model.RoleOtherIncome:
		return Placeholder{"4290", "Other Income (placeholder)", model.AccountTypeRevenue}
	case model.RoleCOGS:
		return Placeholder{"5190", "Cost of Goods Sold (placeholder)", model.AccountTypeExpense}
	case model.RoleExpense:
		return Placeholder{"5990", "Expenses (placeholder)", model.AccountTypeExpense}
	default:
		return Placeholder{"4190", "Revenue (placeholder)", model.AccountTypeRevenue}
	}
}

// Provisioner creates placeholder accounts for filters that matched nothing.
// Provisioning is idempotent per placeholder code.
type Provisioner struct {
	dir     Directory
	logger  *zap.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// NewProvisioner creates a Provisioner writing through dir.
func NewProvisioner(dir Directory, logger *zap.Logger, m *metrics.Metrics) *Provisioner {
	return &Provisioner{dir: dir, logger: logging.OrNop(logger), metrics: m}
}

// Provision returns the placeholder account for the role f asks for, creating
// it when absent. Concurrent calls for the same code share one write.
func (p *Provisioner) Provision(ctx context.Context, f model.Filter) (model.Account, error) {
	role := f.Role()
	ph := PlaceholderFor(role)

	v, err, _ := p.group.Do(ph.Code, func() (any, error) {
		return p.provision(ctx, role, ph, f)
	})
	if err != nil {
		return model.Account{}, err
	}
	return v.(model.Account), nil
}

func (p *Provisioner) provision(ctx context.Context, role string, ph Placeholder, f model.Filter) (model.Account, error) {
	existing, ok, err := p.dir.Get(ctx, ph.Code)
	if err != nil {
		return model.Account{}, fmt.Errorf("reading placeholder %s: %w", ph.Code, err)
	}
	if ok && existing.Active {
		return existing, nil
	}

	acct := model.Account{
		Code:        ph.Code,
		Name:        ph.Name,
		Type:        ph.Type,
		Attributes:  placeholderAttributes(f, ph.Type),
		Active:      true,
		Placeholder: true,
		Description: "Created automatically; no account matched " + f.String(),
	}
	if ok {
		// Reactivate a deactivated placeholder rather than posting to it inactive.
		acct.Name = existing.Name
		acct.Attributes = existing.Attributes
	}

	stored, err := p.dir.Upsert(ctx, acct)
	if errors.Is(err, ErrConflict) {
		p.logger.Warn("placeholder provisioned concurrently, re-reading", zap.String("code", ph.Code))
		stored, ok, err = p.dir.Get(ctx, ph.Code)
		if err != nil {
			return model.Account{}, fmt.Errorf("re-reading placeholder %s: %w", ph.Code, err)
		}
		if !ok {
			return model.Account{}, fmt.Errorf("placeholder %s vanished after conflict", ph.Code)
		}
		return stored, nil
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("upserting placeholder %s: %w", ph.Code, err)
	}

	p.metrics.PlaceholderProvisioned(role)
	p.logger.Info("provisioned placeholder account",
		zap.String("code", stored.Code),
		zap.String("role", role),
		zap.Stringer("filter", f),
	)
	return stored, nil
}

// placeholderAttributes copies the filter so later lookups find the placeholder.
// The category is dropped: one placeholder serves every category of a role.
func placeholderAttributes(f model.Filter, typ model.AccountType) map[string]string {
	attrs := f.Without(model.AttrCategory)
	if attrs.Role() == model.RoleCash {
		attrs[model.AttrFlowType] = model.FlowCash
	}
	if _, ok := attrs[model.AttrNature]; !ok {
		attrs[model.AttrNature] = string(typ)
	}
	return attrs
}
