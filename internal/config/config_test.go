package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dasaf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "report:\n  subject: Solana\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Solana", c.Report.Subject)
	assert.Equal(t, "o4-mini", c.LLM.Model)
	assert.Equal(t, 30*time.Second, c.LLM.Timeout)
	assert.Equal(t, RetryBackoffExponential, c.LLM.Retry.Mode)
	assert.Equal(t, StoreBackendJSON, c.Store.Backend)
	assert.Equal(t, "analyses.json", c.Store.Path)
	assert.Equal(t, []ExportFormat{FormatDOCX, FormatPDF}, c.Export.Formats)
	assert.Equal(t, LogLevelInfo, c.Logging.Level)
	assert.Equal(t, LogFormatText, c.Logging.Format)
}

func TestLoad_NormalizesEnums(t *testing.T) {
	path := writeConfig(t, `
report:
  subject: Solana
store:
  backend: SQLite3
export:
  formats: [PDF, word, pdf]
logging:
  level: WARNING
  format: JSON
llm:
  retry:
    mode: Linear
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreBackendSQLite, c.Store.Backend)
	assert.Equal(t, "analyses.db", c.Store.Path)
	assert.Equal(t, []ExportFormat{FormatPDF, FormatDOCX}, c.Export.Formats)
	assert.Equal(t, LogLevelWarn, c.Logging.Level)
	assert.Equal(t, LogFormatJSON, c.Logging.Format)
	assert.Equal(t, RetryBackoffLinear, c.LLM.Retry.Mode)
}

func TestLoad_RejectsUnknownFormat(t *testing.T) {
	path := writeConfig(t, "export:\n  formats: [docx, odt]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "report: [unterminated\n"))
	require.Error(t, err)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, ce.IsFatal())
}

func TestLoad_ExpandsAndOverridesFromEnvironment(t *testing.T) {
	t.Setenv("TEST_DASAF_KEY", "from-file-expansion")
	t.Setenv(EnvLLMModel, "override-model")

	path := writeConfig(t, "llm:\n  api_key: ${TEST_DASAF_KEY}\n  model: file-model\n")
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file-expansion", c.LLM.APIKey)
	assert.Equal(t, "override-model", c.LLM.Model)
}

func TestLoadTopics(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		topics, err := Default().LoadTopics()
		require.NoError(t, err)
		assert.NotEmpty(t, topics)
	})

	t.Run("catalog file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "topics.yaml")
		require.NoError(t, os.WriteFile(path, []byte("topics:\n  - name: Finality\n    flagged: true\n"), 0o600))

		c := Default()
		c.Catalog = path
		topics, err := c.LoadTopics()
		require.NoError(t, err)
		assert.Equal(t, []catalog.Topic{{Name: "Finality", Flagged: true}}, topics)
	})

	t.Run("inline wins", func(t *testing.T) {
		c := Default()
		c.Catalog = "/does/not/exist.yaml"
		c.Topics = []catalog.Topic{{Name: "Inline"}}
		topics, err := c.LoadTopics()
		require.NoError(t, err)
		assert.Equal(t, "Inline", topics[0].Name)
	})

	t.Run("inline duplicates rejected", func(t *testing.T) {
		c := Default()
		c.Topics = []catalog.Topic{{Name: "A"}, {Name: "a"}}
		_, err := c.LoadTopics()
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	})
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dasaf.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(path, true))

	t.Setenv(EnvLLMAPIKey, "secret")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Solana", c.Report.Subject)
	assert.Equal(t, "secret", c.LLM.APIKey)
	assert.NoError(t, c.ValidateForAnalyze())
}

func TestValidate(t *testing.T) {
	c := Default()
	err := c.ValidateForExport()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	c.Report.Subject = "Solana"
	require.NoError(t, c.ValidateForExport())

	err = c.ValidateForAnalyze()
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	c.LLM.URL = "https://llm.example"
	err = c.ValidateForAnalyze()
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))

	c.LLM.APIKey = "k"
	assert.NoError(t, c.ValidateForAnalyze())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ExportFormat
		wantErr bool
	}{
		{"docx", FormatDOCX, false},
		{" PDF ", FormatPDF, false},
		{"Word", FormatDOCX, false},
		{"odt", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"warning", LogLevelWarn},
		{" error ", LogLevelError},
		{"bogus", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, test := range tests {
		if got := NormalizeLogLevel(test.input); got != test.expected {
			t.Errorf("NormalizeLogLevel(%q) = %q, want %q", test.input, got, test.expected)
		}
	}
}
