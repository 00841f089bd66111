// Package rules maps a transaction to the account filters it posts against.
package rules

import (
	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Rule is the outcome of resolving a transaction.
type Rule struct {
	Debit  model.Filter
	Credit model.Filter

	// NeedsCostOfGoods asks the caller for a secondary cost-of-goods pair.
	NeedsCostOfGoods bool
	// IsCashRelated is set when either side moves cash.
	IsCashRelated bool
	// Explicit means the accounts come from the request, not from filters.
	Explicit bool
}

// CostOfGoods returns the filters for the cost-of-goods pair of a goods sale.
func CostOfGoods() (debit, credit model.Filter) {
	return role(model.RoleCOGS), role(model.RoleInventory)
}

func cash() model.Filter {
	return model.Filter{model.AttrFlowType: model.FlowCash}
}

func role(r string) model.Filter {
	return model.Filter{model.AttrUsageRole: r}
}

func withCategory(f model.Filter, category string) model.Filter {
	if category != "" {
		f[model.AttrCategory] = category
	}
	return f
}

// settle picks the cash filter for cash transactions and the on-account role otherwise.
func settle(mode model.PaymentMode, onAccount string) model.Filter {
	if mode == model.PaymentDeferred {
		return role(onAccount)
	}
	return cash()
}

// Resolve returns the rule for a normalized transaction. Types outside the
// closed set fail with *model.UnrecognizedTypeError.
func Resolve(t model.TransactionType, mode model.PaymentMode, category string) (Rule, error) {
	var r Rule
	switch t {
	case model.TypeSaleGoods:
		r = Rule{
			Debit:            settle(mode, model.RoleReceivable),
			Credit:           withCategory(role(model.RoleRevenue), category),
			NeedsCostOfGoods: true,
		}
	case model.TypeSaleService:
		r = Rule{
			Debit:  settle(mode, model.RoleReceivable),
			Credit: withCategory(role(model.RoleRevenue), category),
		}
	case model.TypeCashReceipt:
		r = Rule{
			Debit:  cash(),
			Credit: withCategory(role(model.RoleOtherIncome), category),
		}
	case model.TypeCashDisbursement:
		r = Rule{
			Debit:  withCategory(role(model.RoleExpense), category),
			Credit: cash(),
		}
	case model.TypePurchaseGoods:
		r = Rule{
			Debit:  role(model.RoleInventory),
			Credit: settle(mode, model.RolePayable),
		}
	case model.TypePurchaseService:
		r = Rule{
			Debit:  withCategory(role(model.RoleExpense), category),
			Credit: settle(mode, model.RolePayable),
		}
	case model.TypePayableSettlement:
		r = Rule{
			Debit:  role(model.RolePayable),
			Credit: cash(),
		}
	case model.TypeReceivableCollection:
		r = Rule{
			Debit:  cash(),
			Credit: role(model.RoleReceivable),
		}
	case model.TypeLoanInflow:
		r = Rule{
			Debit:  cash(),
			Credit: role(model.RoleLoanPayable),
		}
	case model.TypeLoanRepayment:
		r = Rule{
			Debit:  role(model.RoleLoanPayable),
			Credit: cash(),
		}
	case model.TypeInternalTransfer:
		return Rule{Explicit: true, IsCashRelated: true}, nil
	default:
		return Rule{}, &model.UnrecognizedTypeError{Type: string(t)}
	}
	r.IsCashRelated = r.Debit.IsCash() || r.Credit.IsCash()
	return r, nil
}
