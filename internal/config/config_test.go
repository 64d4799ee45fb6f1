package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
bot_token: "123:abc"
service_account_key: "/etc/spendlog/key.json"
spreadsheet:
  id: "sheet-id-1"
  sheet_name: "Transactions"
`

func TestLoad_MinimalConfigGetsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "spendlog.db", cfg.Database)
	assert.Equal(t, DefaultCategories, cfg.Categories)
	assert.Equal(t, "RSD", cfg.Currency)
	assert.Equal(t, 5*time.Minute, cfg.Menu.TTL.Std())
	assert.Equal(t, time.Minute, cfg.Menu.SweepInterval.Std())
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Sync.BaseDelay.Std())
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
bot_token: "123:abc"
database: "/var/lib/spendlog/ledger.db"
service_account_key: "/etc/spendlog/key.json"
spreadsheet:
  id: "sheet-id-1"
  sheet_name: "Expenses"
categories: ["Food", "Fun"]
currency: "EUR"
menu:
  ttl: "10m"
  sweep_interval: "30s"
sync:
  max_attempts: 3
  base_delay: "250ms"
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/spendlog/ledger.db", cfg.Database)
	assert.Equal(t, "Expenses", cfg.Spreadsheet.SheetName)
	assert.Equal(t, []string{"Food", "Fun"}, cfg.Categories)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 10*time.Minute, cfg.Menu.TTL.Std())
	assert.Equal(t, 30*time.Second, cfg.Menu.SweepInterval.Std())
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.BaseDelay.Std())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SPENDLOG_BOT_TOKEN", "999:env")
	t.Setenv("SPENDLOG_DATABASE", "/tmp/env.db")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "999:env", cfg.BotToken)
	assert.Equal(t, "/tmp/env.db", cfg.Database)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "bot_token: [unclosed"))
	require.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
menu:
  ttl: "soon"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing bot token",
			`
service_account_key: "/k.json"
spreadsheet: {id: "x", sheet_name: "y"}
`,
			"bot_token",
		},
		{
			"missing spreadsheet id",
			`
bot_token: "t"
service_account_key: "/k.json"
spreadsheet: {sheet_name: "y"}
`,
			"spreadsheet.id",
		},
		{
			"missing service account key",
			`
bot_token: "t"
spreadsheet: {id: "x", sheet_name: "y"}
`,
			"service_account_key",
		},
		{
			"empty categories",
			minimalConfig + "categories: []\n",
			"categories",
		},
		{
			"zero max attempts",
			minimalConfig + "sync: {max_attempts: 0}\n",
			"max_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
