package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of transactions the engine can post.
type TransactionType string

const (
	TypeSaleGoods            TransactionType = "sale_goods"
	TypeSaleService          TransactionType = "sale_service"
	TypeCashReceipt          TransactionType = "cash_receipt"
	TypeCashDisbursement     TransactionType = "cash_disbursement"
	TypePurchaseGoods        TransactionType = "purchase_goods"
	TypePurchaseService      TransactionType = "purchase_service"
	TypePayableSettlement    TransactionType = "payable_settlement"
	TypeReceivableCollection TransactionType = "receivable_collection"
	TypeLoanInflow           TransactionType = "loan_inflow"
	TypeLoanRepayment        TransactionType = "loan_repayment"
	TypeInternalTransfer     TransactionType = "internal_transfer"
)

// TransactionTypes lists every recognized type in declaration order.
var TransactionTypes = []TransactionType{
	TypeSaleGoods,
	TypeSaleService,
	TypeCashReceipt,
	TypeCashDisbursement,
	TypePurchaseGoods,
	TypePurchaseService,
	TypePayableSettlement,
	TypeReceivableCollection,
	TypeLoanInflow,
	TypeLoanRepayment,
	TypeInternalTransfer,
}

// UnrecognizedTypeError is returned for a transaction type outside the closed set.
type UnrecognizedTypeError struct {
	Type string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized transaction type %q", e.Type)
}

// ParseTransactionType maps a string to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransactionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", &UnrecognizedTypeError{Type: s}
}

// PaymentMode says whether cash moves now or the amount is carried on account.
type PaymentMode string

const (
	PaymentCash     PaymentMode = "cash"
	PaymentDeferred PaymentMode = "deferred"
)

// ParsePaymentMode canonicalizes a payment mode. Empty means cash.
func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cash":
		return PaymentCash, true
	case "deferred", "credit", "on_account":
		return PaymentDeferred, true
	default:
		return "", false
	}
}

// TransactionRequest is the normalized input to the posting engine.
// Type and PaymentMode are kept as raw strings until normalization.
type TransactionRequest struct {
	Type          string
	PaymentMode   string
	Amount        decimal.Decimal
	Date          time.Time
	Category      string
	Description   string
	SourceAccount string // internal_transfer only
	DestAccount   string // internal_transfer only
	CostBasis     decimal.Decimal
}
