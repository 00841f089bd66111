package model

import (
	"sort"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Classification attribute keys used for rule matching.
const (
	AttrFlowType  = "flow_type"
	AttrUsageRole = "usage_role"
	AttrNature    = "nature"
	AttrCategory  = "category"
)

// Usage roles.
const (
	RoleCash        = "cash"
	RoleReceivable  = "receivable"
	RoleInventory   = "inventory"
	RolePayable     = "payable"
	RoleRevenue     = "revenue"
	RoleOtherIncome = "other_income"
	RoleExpense     = "expense"
	RoleCOGS        = "cogs"
	RoleLoanPayable = "loan_payable"
)

// FlowCash marks accounts that hold cash or cash equivalents.
const FlowCash = "cash"

// Account is one entry in the chart of accounts.
type Account struct {
	Code        string
	Name        string
	Type        AccountType
	Attributes  map[string]string
	Active      bool
	Placeholder bool
	Description string
}

// Matches reports whether the account carries every attribute in f.
func (a Account) Matches(f Filter) bool {
	for k, v := range f {
		if a.Attributes[k] != v {
			return false
		}
	}
	return true
}

// Filter is a small set of attribute=value pairs an account must match.
type Filter map[string]string

// Role returns the usage role the filter asks for. A bare cash flow filter
// counts as the cash role.
func (f Filter) Role() string {
	if r := f[AttrUsageRole]; r != "" {
		return r
	}
	if f[AttrFlowType] == FlowCash {
		return RoleCash
	}
	return ""
}

// IsCash reports whether the filter selects a cash account.
func (f Filter) IsCash() bool {
	return f[AttrFlowType] == FlowCash || f[AttrUsageRole] == RoleCash
}

// Without returns a copy of f with key removed.
func (f Filter) Without(key string) Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// String renders the filter as sorted "k=v;k=v" pairs.
func (f Filter) String() string {
	return FormatAttributes(f)
}

// FormatAttributes renders attributes as sorted "k=v;k=v" pairs.
func FormatAttributes(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return strings.Join(parts, ";")
}

// ParseAttributes is the inverse of FormatAttributes. Malformed pairs are skipped.
func ParseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k == "" {
			continue
		}
		attrs[k] = v
	}
	return attrs
}
