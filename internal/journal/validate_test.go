package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

func requireProblem(t *testing.T, err error, substr string) {
	t.Helper()
	var be *BalanceError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, err.Error(), substr)
}

func TestCheckBalanced_OK(t *testing.T) {
	assert.NoError(t, CheckBalanced(pair("5110", "1010", "100.00")))
	assert.NoError(t, CheckBalanced(nil))
}

func TestCheckBalanced_OddLine(t *testing.T) {
	lines := pair("5110", "1010", "100.00")
	lines = append(lines, lines[0])
	requireProblem(t, CheckBalanced(lines), "odd number of lines")
}

func TestCheckBalanced_UnequalPair(t *testing.T) {
	lines := pair("5110", "1010", "100.00")
	lines[1].Amount = dec("99.00")
	err := CheckBalanced(lines)
	requireProblem(t, err, "debit 100.00 != credit 99.00")
	assert.Contains(t, err.Error(), "debits (100.00) != credits (99.00)")
}

func TestCheckBalanced_SwappedSides(t *testing.T) {
	lines := pair("5110", "1010", "100.00")
	lines[0], lines[1] = lines[1], lines[0]
	requireProblem(t, CheckBalanced(lines), "not a debit/credit pair")
}

func TestCheckBalanced_NonPositive(t *testing.T) {
	requireProblem(t, CheckBalanced(pair("5110", "1010", "0")), "must be positive")
	requireProblem(t, CheckBalanced(pair("5110", "1010", "-5")), "must be positive")
}

func TestCheckBalanced_Precision(t *testing.T) {
	requireProblem(t, CheckBalanced(pair("5110", "1010", "10.005")), "more than 2 decimal places")
}

func TestCheckBalanced_MissingAccountAndSide(t *testing.T) {
	lines := pair("5110", "1010", "10")
	lines[0].AccountCode = ""
	requireProblem(t, CheckBalanced(lines), "missing account")

	lines = pair("5110", "1010", "10")
	lines[1].Side = model.Side("sideways")
	requireProblem(t, CheckBalanced(lines), "unknown side")
}
