package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/risk"
)

// Config represents the complete journal configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Risk       risk.Policy      `json:"risk" yaml:"risk"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Blob       BlobConfig       `json:"blob" yaml:"blob"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Backup     BackupConfig     `json:"backup" yaml:"backup"`
}

// AccountConfig seeds the account created on first use.
type AccountConfig struct {
	Name        string  `json:"name" yaml:"name"`
	Currency    string  `json:"currency" yaml:"currency"`
	Balance     float64 `json:"balance" yaml:"balance"`
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent"`
}

// SimulationConfig holds the what-if equity defaults. Zero starting
// balance or risk percent means "use the account's".
type SimulationConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	RiskPercent     float64 `json:"risk_percent" yaml:"risk_percent"`
}

// StorageConfig selects the trade store.
type StorageConfig struct {
	Type     string `json:"type" yaml:"type"` // "sqlite" or "postgres"
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	MaxConns int    `json:"max_conns,omitempty" yaml:"max_conns,omitempty"`
}

// BlobConfig selects where screenshots and backups are written.
type BlobConfig struct {
	Type    string   `json:"type" yaml:"type"` // "local" or "s3"
	Dir     string   `json:"dir,omitempty" yaml:"dir,omitempty"`
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	S3      S3Config `json:"s3" yaml:"s3"`
}

type S3Config struct {
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Region         string `json:"region,omitempty" yaml:"region,omitempty"`
	Bucket         string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	AccessKey      string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey      string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	UseSSL         bool   `json:"use_ssl" yaml:"use_ssl"`
	ForcePathStyle bool   `json:"force_path_style" yaml:"force_path_style"`
	PublicURL      string `json:"public_url,omitempty" yaml:"public_url,omitempty"`
}

type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	Mode        string   `json:"mode" yaml:"mode"` // gin mode: debug, release, test
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	MaxUploadMB int64    `json:"max_upload_mb" yaml:"max_upload_mb"`
}

type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Encoding          string `json:"encoding" yaml:"encoding"` // "json" or "console"
	Development       bool   `json:"development" yaml:"development"`
	Sampling          bool   `json:"sampling" yaml:"sampling"`
	DisableCaller     bool   `json:"disable_caller" yaml:"disable_caller"`
	DisableStacktrace bool   `json:"disable_stacktrace" yaml:"disable_stacktrace"`
}

// BackupConfig schedules CSV exports of all trades into the blob store.
type BackupConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Cron    string `json:"cron" yaml:"cron"`
	Prefix  string `json:"prefix" yaml:"prefix"`
	Keep    int    `json:"keep" yaml:"keep"` // 0 keeps every backup
}

// Load builds the effective configuration: defaults, then the file at
// path (if any), then .env and TJ_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	loadDotEnv()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML) on top of
// the defaults, without environment overrides.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, c); err != nil {
		if jerr := json.Unmarshal(data, c); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.RiskPercent <= 0 || c.Account.RiskPercent > 100 {
		return fmt.Errorf("account.risk_percent must be between 0 and 100")
	}
	if c.Simulation.StartingBalance < 0 {
		return fmt.Errorf("simulation.starting_balance must not be negative")
	}
	if c.Simulation.RiskPercent < 0 || c.Simulation.RiskPercent > 100 {
		return fmt.Errorf("simulation.risk_percent must be between 0 and 100")
	}

	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("storage.db_path required for sqlite type")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn required for postgres type")
		}
	default:
		return fmt.Errorf("storage.type must be 'sqlite' or 'postgres'")
	}

	switch c.Blob.Type {
	case "local":
		if c.Blob.Dir == "" {
			return fmt.Errorf("blob.dir required for local type")
		}
	case "s3":
		if c.Blob.S3.Bucket == "" || c.Blob.S3.Region == "" {
			return fmt.Errorf("blob.s3.bucket and blob.s3.region required for s3 type")
		}
	default:
		return fmt.Errorf("blob.type must be 'local' or 's3'")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}

	if c.Backup.Enabled {
		if _, err := cron.ParseStandard(c.Backup.Cron); err != nil {
			return fmt.Errorf("backup.cron: %w", err)
		}
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must not be negative")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Name:        "Main",
			Currency:    "USD",
			Balance:     10000,
			RiskPercent: 1,
		},
		Simulation: SimulationConfig{
			Enabled: false,
		},
		Risk: risk.DefaultPolicy(),
		Storage: StorageConfig{
			Type:   "sqlite",
			DBPath: "./journal.db",
		},
		Blob: BlobConfig{
			Type:    "local",
			Dir:     "./screenshots",
			BaseURL: "/screenshots",
			S3: S3Config{
				Bucket:         "trade-images",
				ForcePathStyle: true,
				UseSSL:         true,
			},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Mode:        "release",
			CORSOrigins: []string{"*"},
			MaxUploadMB: 10,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Backup: BackupConfig{
			Enabled: false,
			Cron:    "0 3 * * *",
			Prefix:  "backups",
			Keep:    14,
		},
	}
}
