package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesabot/mesa/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		path := writeConfig(t, `
gemini:
  api_key: key-gemini
airtable:
  api_key: key-airtable
  base_id: appBASE
  table_id: tblRES
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Listen.Address)
		assert.Equal(t, "data/sessions.db", cfg.Sessions.Path)
		assert.Equal(t, "America/Mexico_City", cfg.Timezone)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "America/Mexico_City", cfg.Location().String())
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		path := writeConfig(t, `
listen:
  address: ":9000"
gemini:
  api_key: key-gemini
  model: gemini-2.0-pro
airtable:
  api_key: key-airtable
  base_id: appBASE
  table_id: tblRES
sessions:
  path: /var/lib/mesa/sessions.db
timezone: America/Monterrey
log_level: debug
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9000", cfg.Listen.Address)
		assert.Equal(t, "gemini-2.0-pro", cfg.Gemini.Model)
		assert.Equal(t, "/var/lib/mesa/sessions.db", cfg.Sessions.Path)
		assert.Equal(t, "America/Monterrey", cfg.Timezone)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("api keys fall back to environment", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "env-gemini")
		t.Setenv("AIRTABLE_API_KEY", "env-airtable")

		path := writeConfig(t, `
airtable:
  base_id: appBASE
  table_id: tblRES
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-gemini", cfg.Gemini.APIKey)
		assert.Equal(t, "env-airtable", cfg.Airtable.APIKey)
	})

	t.Run("missing gemini key is rejected", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("AIRTABLE_API_KEY", "key-airtable")

		path := writeConfig(t, `
airtable:
  base_id: appBASE
  table_id: tblRES
`)
		_, err := config.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gemini api key")
	})

	t.Run("missing airtable table is rejected", func(t *testing.T) {
		path := writeConfig(t, `
gemini:
  api_key: key-gemini
airtable:
  api_key: key-airtable
`)
		_, err := config.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_id and table_id")
	})

	t.Run("invalid timezone is rejected", func(t *testing.T) {
		path := writeConfig(t, `
gemini:
  api_key: key-gemini
airtable:
  api_key: key-airtable
  base_id: appBASE
  table_id: tblRES
timezone: Mars/Olympus_Mons
`)
		_, err := config.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timezone")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
