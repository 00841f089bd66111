package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// request is a validated, canonical TransactionRequest.
type request struct {
	Type        model.TransactionType
	Mode        model.PaymentMode
	Amount      decimal.Decimal
	Date        time.Time
	Category    string
	Description string
	Source      string
	Dest        string
	CostBasis   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func hasCents(d decimal.Decimal) bool {
	return d.Mul(hundred).Equal(d.Mul(hundred).Floor())
}

// normalize validates req and canonicalizes its fields. Generic field problems
// are reported before an unrecognized type.
func normalize(req model.TransactionRequest) (request, error) {
	var violations []Violation
	add := func(field, msg string) {
		violations = append(violations, Violation{Field: field, Message: msg})
	}

	var typ model.TransactionType
	var typeErr error
	if strings.TrimSpace(req.Type) == "" {
		add("type", "is required")
	} else {
		typ, typeErr = model.ParseTransactionType(req.Type)
	}

	if !req.Amount.IsPositive() {
		add("amount", "must be greater than zero")
	} else if !hasCents(req.Amount) {
		add("amount", "must have at most 2 decimal places")
	}

	if req.Date.IsZero() {
		add("date", "is required")
	}

	mode, ok := model.ParsePaymentMode(req.PaymentMode)
	if !ok {
		add("paymentMode", "must be cash or deferred, got "+req.PaymentMode)
	}

	r := request{
		Type:        typ,
		Mode:        mode,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Source:      strings.TrimSpace(req.SourceAccount),
		Dest:        strings.TrimSpace(req.DestAccount),
		CostBasis:   req.CostBasis,
	}

	switch typ {
	case model.TypeInternalTransfer:
		if r.Source == "" {
			add("sourceAccount", "is required for internal_transfer")
		}
		if r.Dest == "" {
			add("destAccount", "is required for internal_transfer")
		}
		if r.Source != "" && r.Source == r.Dest {
			add("destAccount", "must differ from sourceAccount")
		}
	case model.TypeSaleGoods:
		if !r.CostBasis.IsPositive() {
			add("costBasis", "is required for sale_goods and must be greater than zero")
		} else if !hasCents(r.CostBasis) {
			add("costBasis", "must have at most 2 decimal places")
		}
	}

	if len(violations) > 0 {
		return request{}, &ValidationError{Violations: violations}
	}
	if typeErr != nil {
		return request{}, typeErr
	}
	return r, nil
}
