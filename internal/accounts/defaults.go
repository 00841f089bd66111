package accounts

import "github.com/cleared-dev/ledgerengine/internal/model"

// DefaultChart returns the starter chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "trading":
		return tradingChart()
	default:
		return tradingChart()
	}
}

func attrs(flow, role, nature string) map[string]string {
	return map[string]string{
		model.AttrFlowType:  flow,
		model.AttrUsageRole: role,
		model.AttrNature:    nature,
	}
}

func tradingChart() []model.Account {
	return []model.Account{
		{Code: "1010", Name: "Cash on Hand", Type: model.AccountTypeAsset, Attributes: attrs("cash", model.RoleCash, "asset"), Active: true, Description: "Petty cash and till"},
		{Code: "1020", Name: "Bank Account", Type: model.AccountTypeAsset, Attributes: attrs("cash", model.RoleCash, "asset"), Active: true, Description: "Primary operating account"},
		{Code: "1210", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Attributes: attrs("noncash", model.RoleReceivable, "asset"), Active: true},
		{Code: "1310", Name: "Merchandise Inventory", Type: model.AccountTypeAsset, Attributes: attrs("noncash", model.RoleInventory, "asset"), Active: true},
		{Code: "2110", Name: "Accounts Payable", Type: model.AccountTypeLiability, Attributes: attrs("noncash", model.RolePayable, "liability"), Active: true},
		{Code: "2210", Name: "Bank Loans", Type: model.AccountTypeLiability, Attributes: attrs("noncash", model.RoleLoanPayable, "liability"), Active: true},
		{Code: "3010", Name: "Owner's Equity", Type: model.AccountTypeEquity, Attributes: attrs("noncash", "equity", "equity"), Active: true},
		{Code: "4010", Name: "Sales Revenue", Type: model.AccountTypeRevenue, Attributes: attrs("noncash", model.RoleRevenue, "revenue"), Active: true},
		{Code: "4210", Name: "Other Income", Type: model.AccountTypeRevenue, Attributes: attrs("noncash", model.RoleOtherIncome, "revenue"), Active: true},
		{Code: "5010", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Attributes: attrs("noncash", model.RoleCOGS, "expense"), Active: true},
		{Code: "5110", Name: "Operating Expenses", Type: model.AccountTypeExpense, Attributes: attrs("noncash", model.RoleExpense, "expense"), Active: true},
	}
}
