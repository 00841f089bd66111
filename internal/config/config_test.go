package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz")
	cfg.Store.Path = "data/books.db"

	path := filepath.Join(t.TempDir(), "ledgerengine.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business, got.Business)
	assert.Equal(t, "data/books.db", got.Store.Path)
	assert.True(t, cfg.Loans.LateFeeDailyRatePercent.Equal(got.Loans.LateFeeDailyRatePercent))
	assert.Equal(t, "info", got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "trading", cfg.Business.EntityType)
	assert.Equal(t, "IDR", cfg.Business.Currency)
	assert.Equal(t, "ledger.db", cfg.Store.Path)
	assert.Equal(t, LedgerSQLite, cfg.Store.Ledger)
	assert.Equal(t, "0.1", cfg.Loans.LateFeeDailyRatePercent.String())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("business:\n  name: Toko Maju\nlog:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Toko Maju", cfg.Business.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ledger.db", cfg.Store.Path)
	assert.Equal(t, "0.1", cfg.Loans.LateFeeDailyRatePercent.String())
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz")
	path := filepath.Join(t.TempDir(), "ledgerengine.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "entity_type: trading")
	assert.Contains(t, contents, "path: ledger.db")
	assert.Contains(t, contents, "late_fee_daily_rate_percent:")
}

func TestApplyEnv_Variables(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLateFeeRate, "0.25")

	cfg := Default("Biz")
	require.NoError(t, ApplyEnv(cfg, ""))
	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0.25", cfg.Loans.LateFeeDailyRatePercent.String())
}

func TestApplyEnv_File(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLateFeeRate, "")
	// set so the file cannot replace it
	t.Setenv(EnvLogLevel, "warn")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := EnvDB + "=from-file.db\n" + EnvLogLevel + "=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	cfg := Default("Biz")
	require.NoError(t, ApplyEnv(cfg, envFile))
	assert.Equal(t, "warn", cfg.Log.Level)
	// godotenv does not override the empty value already present
	assert.Equal(t, "ledger.db", cfg.Store.Path)
}

func TestApplyEnv_MissingFileIgnored(t *testing.T) {
	cfg := Default("Biz")
	assert.NoError(t, ApplyEnv(cfg, filepath.Join(t.TempDir(), "missing.env")))
}

func TestApplyEnv_BadRate(t *testing.T) {
	t.Setenv(EnvLateFeeRate, "abc")
	assert.Error(t, ApplyEnv(Default("Biz"), ""))

	t.Setenv(EnvLateFeeRate, "-1")
	assert.Error(t, ApplyEnv(Default("Biz"), ""))
}
