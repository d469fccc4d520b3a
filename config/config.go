package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ledger/market"
)

// Config is the complete configuration for a replay run.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Instrument InstrumentConfig `json:"instrument" yaml:"instrument"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// AccountConfig identifies the owner of replayed positions.
type AccountConfig struct {
	ID         string `json:"id" yaml:"id"`
	StrategyID string `json:"strategy_id" yaml:"strategy_id"`
}

// InstrumentConfig is the accounting descriptor of the replayed symbol.
type InstrumentConfig struct {
	Symbol        string `json:"symbol" yaml:"symbol"`
	BaseCurrency  string `json:"base_currency,omitempty" yaml:"base_currency,omitempty"`
	QuoteCurrency string `json:"quote_currency" yaml:"quote_currency"`
	InverseQuote  bool   `json:"inverse_quote,omitempty" yaml:"inverse_quote,omitempty"`
	Multiplier    string `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	PricePrec     int32  `json:"price_precision,omitempty" yaml:"price_precision,omitempty"`
	SizePrec      int32  `json:"size_precision,omitempty" yaml:"size_precision,omitempty"`
}

// JournalConfig selects where the audit trail goes.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv" or "sqlite"
	FillsFile     string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
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

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Instrument.Symbol == "" {
		return fmt.Errorf("instrument.symbol is required")
	}
	if c.Instrument.QuoteCurrency == "" {
		return fmt.Errorf("instrument.quote_currency is required")
	}
	if c.Instrument.Multiplier != "" {
		m, err := decimal.NewFromString(c.Instrument.Multiplier)
		if err != nil {
			return fmt.Errorf("instrument.multiplier: %w", err)
		}
		if m.Sign() <= 0 {
			return fmt.Errorf("instrument.multiplier must be positive")
		}
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.FillsFile == "" || c.Journal.PositionsFile == "") {
		return fmt.Errorf("journal fills_file and positions_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// BuildInstrument converts the descriptor into a market.Instrument.
// Call after Validate.
func (c *Config) BuildInstrument() market.Instrument {
	mult := decimal.Decimal{}
	if c.Instrument.Multiplier != "" {
		mult, _ = decimal.NewFromString(c.Instrument.Multiplier)
	}
	return market.Instrument{
		Symbol:        c.Instrument.Symbol,
		BaseCurrency:  market.Currency(c.Instrument.BaseCurrency),
		QuoteCurrency: market.Currency(c.Instrument.QuoteCurrency),
		InverseQuote:  c.Instrument.InverseQuote,
		Multiplier:    mult,
		PricePrec:     c.Instrument.PricePrec,
		SizePrec:      c.Instrument.SizePrec,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:         "ACC-001",
			StrategyID: "S-001",
		},
		Instrument: InstrumentConfig{
			Symbol:        "BTC_USDT",
			BaseCurrency:  "BTC",
			QuoteCurrency: "USDT",
			PricePrec:     2,
			SizePrec:      6,
		},
		Journal: JournalConfig{
			Type:          "csv",
			FillsFile:     "./fills_journal.csv",
			PositionsFile: "./positions_journal.csv",
		},
	}
}
