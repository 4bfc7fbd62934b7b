package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noama-samreen/dasaf-cbgpt/internal/catalog"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

// Config represents the application configuration
type Config struct {
	Report  ReportConfig    `yaml:"report"`
	LLM     LLMConfig       `yaml:"llm"`
	Store   StoreConfig     `yaml:"store"`
	Export  ExportConfig    `yaml:"export"`
	Logging LoggingConfig   `yaml:"logging"`
	Metrics MetricsConfig   `yaml:"metrics,omitempty"`
	Catalog string          `yaml:"catalog,omitempty"` // path to a topics YAML file
	Topics  []catalog.Topic `yaml:"topics,omitempty"`  // inline catalog, wins over Catalog
}

// ReportConfig describes the subject of the report.
type ReportConfig struct {
	Subject      string `yaml:"subject"`
	Symbol       string `yaml:"symbol,omitempty"`
	ReferenceURL string `yaml:"reference_url,omitempty"` // block explorer
}

// LLMConfig configures the language-model service.
type LLMConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key,omitempty"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

// StoreBackend selects where analysis texts are persisted.
type StoreBackend string

const (
	StoreBackendJSON   StoreBackend = "json"
	StoreBackendSQLite StoreBackend = "sqlite"
)

var storeBackends = newEnum("store backend", StoreBackendJSON, map[string]StoreBackend{
	"json":    StoreBackendJSON,
	"sqlite":  StoreBackendSQLite,
	"sqlite3": StoreBackendSQLite,
})

// StoreConfig configures analysis persistence.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend"`
	Path    string       `yaml:"path"`
}

// ExportFormat is a target document format.
type ExportFormat string

const (
	FormatDOCX ExportFormat = "docx"
	FormatPDF  ExportFormat = "pdf"
)

var exportFormats = newEnum("export format", FormatDOCX, map[string]ExportFormat{
	"docx": FormatDOCX,
	"word": FormatDOCX,
	"pdf":  FormatPDF,
})

// ParseFormat validates a user-supplied format name.
func ParseFormat(raw string) (ExportFormat, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("empty export format")
	}
	return exportFormats.parse(raw)
}

// ExportConfig configures document export.
type ExportConfig struct {
	Directory  string         `yaml:"directory"`
	Basename   string         `yaml:"basename,omitempty"` // defaults to a slug of the subject
	Formats    []ExportFormat `yaml:"formats"`
	ChromePath string         `yaml:"chrome_path,omitempty"`
	Timeout    time.Duration  `yaml:"timeout"`
}

// MetricsConfig controls Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

func applyDefaults(c *Config) {
	if c.LLM.Model == "" {
		c.LLM.Model = "o4-mini"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	c.LLM.Retry.Mode = NormalizeRetryBackoff(string(c.LLM.Retry.Mode))
	if c.LLM.Retry.Initial <= 0 {
		c.LLM.Retry.Initial = time.Second
	}
	if c.LLM.Retry.Max <= 0 {
		c.LLM.Retry.Max = 20 * time.Second
	}
	if c.LLM.Retry.MaxRetries < 0 {
		c.LLM.Retry.MaxRetries = 0
	}

	c.Store.Backend = storeBackends.normalize(string(c.Store.Backend))
	if c.Store.Path == "" {
		if c.Store.Backend == StoreBackendSQLite {
			c.Store.Path = "analyses.db"
		} else {
			c.Store.Path = "analyses.json"
		}
	}

	if c.Export.Directory == "" {
		c.Export.Directory = "./reports"
	}
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []ExportFormat{FormatDOCX, FormatPDF}
	}
	if c.Export.Timeout <= 0 {
		c.Export.Timeout = time.Minute
	}

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	if envPath, err := loadEnvFile(); err != nil {
		slog.Warn("Failed to load environment file", "path", envPath, "error", err)
	} else if envPath != "" {
		slog.Debug("Loaded environment file", "path", envPath)
	}

	// #nosec G304 - configPath is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext(errors.ContextPath, configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext(errors.ContextPath, configPath).
			Build()
	}

	var c Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &c); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext(errors.ContextPath, configPath).
			Fatal().
			Build()
	}

	applyEnvOverrides(&c)
	applyDefaults(&c)
	if err := c.validateFormats(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadTopics returns the inline catalog, the catalog file, or the built-in
// default, in that order of preference.
func (c *Config) LoadTopics() ([]catalog.Topic, error) {
	if len(c.Topics) > 0 {
		if err := catalog.Validate(c.Topics); err != nil {
			return nil, err
		}
		return c.Topics, nil
	}
	if c.Catalog != "" {
		return catalog.Load(c.Catalog)
	}
	return catalog.Default(), nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext(errors.ContextPath, configPath).
			Build()
	}

	example := Default()
	example.Report = ReportConfig{
		Subject:      "Solana",
		Symbol:       "SOL",
		ReferenceURL: "https://explorer.solana.com",
	}
	example.LLM.URL = "https://llm.example.com/v1/chat/completions"
	example.LLM.APIKey = "${" + EnvLLMAPIKey + "}"
	example.LLM.Retry.MaxRetries = 2

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext(errors.ContextPath, configPath).
			Build()
	}
	return nil
}

func (c *Config) validateFormats() error {
	seen := make(map[ExportFormat]bool, len(c.Export.Formats))
	out := c.Export.Formats[:0]
	for _, f := range c.Export.Formats {
		parsed, err := ParseFormat(string(f))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid export format").
				WithContext(errors.ContextFormat, string(f)).
				Build()
		}
		if !seen[parsed] {
			seen[parsed] = true
			out = append(out, parsed)
		}
	}
	c.Export.Formats = out
	return nil
}

// ValidateForExport checks the fields export needs.
func (c *Config) ValidateForExport() error {
	if strings.TrimSpace(c.Report.Subject) == "" {
		return errors.ValidationError("report subject is required").
			WithContext("field", "report.subject").
			Build()
	}
	if len(c.Export.Formats) == 0 {
		return errors.ValidationError("at least one export format is required").
			WithContext("field", "export.formats").
			Build()
	}
	return nil
}

// ValidateForAnalyze checks the fields analysis needs on top of export's.
func (c *Config) ValidateForAnalyze() error {
	if err := c.ValidateForExport(); err != nil {
		return err
	}
	if strings.TrimSpace(c.LLM.URL) == "" {
		return errors.ConfigError("llm url is required").
			WithContext("field", "llm.url").
			WithContext("env", EnvLLMURL).
			Build()
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.AuthError("llm api key is required").
			WithContext("field", "llm.api_key").
			WithContext("env", EnvLLMAPIKey).
			Build()
	}
	return nil
}
