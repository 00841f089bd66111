package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Code: "1010", Name: "Cash on Hand", Type: model.AccountTypeAsset, Attributes: map[string]string{"flow_type": "cash"}, Active: true, Description: "Till"},
		{Code: "1190", Name: "Cash (placeholder)", Type: model.AccountTypeAsset, Attributes: map[string]string{"flow_type": "cash", "nature": "asset"}, Active: true, Placeholder: true},
		{Code: "5110", Name: "Old Expenses", Type: model.AccountTypeExpense, Active: false},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, accounts[0].Code, got[0].Code)
	assert.Equal(t, accounts[0].Name, got[0].Name)
	assert.Equal(t, accounts[0].Attributes, got[0].Attributes)
	assert.True(t, got[0].Active)
	assert.False(t, got[0].Placeholder)

	assert.True(t, got[1].Placeholder)
	assert.Equal(t, accounts[1].Attributes, got[1].Attributes)

	assert.False(t, got[2].Active)
	assert.Empty(t, got[2].Attributes)
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadAccounts_BadActive(t *testing.T) {
	data := "code,name,type,attributes,active,placeholder,description\n1010,Cash,asset,,maybe,,\n"
	_, err := ReadAccounts(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing active")
}

func TestReadAccounts_EmptyCode(t *testing.T) {
	data := "code,name,type,attributes,active,placeholder,description\n,Cash,asset,,true,,\n"
	_, err := ReadAccounts(strings.NewReader(data))
	assert.Error(t, err)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("trading")
	require.NotEmpty(t, chart)

	codes := make(map[string]bool)
	roles := make(map[string]bool)
	for _, acct := range chart {
		assert.False(t, codes[acct.Code], "duplicate code %s", acct.Code)
		codes[acct.Code] = true
		roles[acct.Attributes[model.AttrUsageRole]] = true

		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.Code)
		assert.NotEmpty(t, acct.Type, "account %s missing type", acct.Code)
		assert.True(t, acct.Active)
		assert.False(t, acct.Placeholder)
	}

	for _, role := range []string{
		model.RoleCash, model.RoleReceivable, model.RoleInventory, model.RolePayable,
		model.RoleLoanPayable, model.RoleRevenue, model.RoleOtherIncome, model.RoleCOGS, model.RoleExpense,
	} {
		assert.True(t, roles[role], "default chart should cover role %s", role)
	}
}

func TestDefaultChart_UnknownEntityType(t *testing.T) {
	assert.Equal(t, DefaultChart("trading"), DefaultChart("unknown_type"))
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("trading")

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, chart))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
