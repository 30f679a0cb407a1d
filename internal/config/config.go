package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	Business     BusinessConfig  `yaml:"business"`
	Store        StoreConfig     `yaml:"store"`
	Ledger       LedgerConfig    `yaml:"ledger"`
	Directory    DirectoryConfig `yaml:"directory"`
	BankAccounts []BankAccount   `yaml:"bank_accounts,omitempty"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// StoreConfig points at the external record store. BANKFEED_STORE_DSN
// overrides the configured DSN.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// LedgerConfig controls the local journal poster.
type LedgerConfig struct {
	JournalPath string `yaml:"journal_path"`
}

// DirectoryConfig points at the reference-data CSV directory.
type DirectoryConfig struct {
	Path string `yaml:"path"`
}

// BankAccount maps a bank feed or statement file to an account reference.
type BankAccount struct {
	Name      string `yaml:"name"`
	LastFour  string `yaml:"last_four"`
	AccountID string `yaml:"account_id"`
}

// Load reads a bankfeed.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Ledger: LedgerConfig{
			JournalPath: "ledger/journal.csv",
		},
		Directory: DirectoryConfig{
			Path: "directory",
		},
	}
}

// Account resolves a configured bank account by id.
func (c *Config) Account(accountID string) (BankAccount, bool) {
	for _, a := range c.BankAccounts {
		if a.AccountID == accountID {
			return a, true
		}
	}
	return BankAccount{}, false
}
