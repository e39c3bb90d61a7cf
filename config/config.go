package config

import (
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the deployment file of a ledger node.
type Config struct {
	Node          Node            `toml:"Node"`
	Token         Token           `toml:"Token"`
	Logging       Logging         `toml:"Logging"`
	Telemetry     Telemetry       `toml:"Telemetry"`
	Staking       Staking         `toml:"Staking"`
	Vesting       []Vesting       `toml:"Vesting"`
	SingleVesting []SingleVesting `toml:"SingleVesting"`

	dir string
}

// Node locates the persistent stores. An empty DataDir keeps state in memory;
// an empty JournalDSN disables the audit journal. Backend is "leveldb"
// (default) or "bolt".
type Node struct {
	DataDir    string `toml:"DataDir"`
	Backend    string `toml:"Backend"`
	JournalDSN string `toml:"JournalDSN"`
}

// Token describes the distributed token. Cap and allocation amounts are whole
// tokens scaled by Decimals.
type Token struct {
	Symbol     string       `toml:"Symbol"`
	Decimals   uint8        `toml:"Decimals"`
	Cap        string       `toml:"Cap"`
	Allocation []Allocation `toml:"Allocation"`
}

// Allocation mints Amount whole tokens to Address when the node opens a fresh
// store.
type Allocation struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

type Logging struct {
	Level      string `toml:"Level"`
	Env        string `toml:"Env"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

type Telemetry struct {
	ServiceName string `toml:"ServiceName"`
	Endpoint    string `toml:"Endpoint"`
	Insecure    bool   `toml:"Insecure"`
	Headers     string `toml:"Headers"`
	Traces      bool   `toml:"Traces"`
	Metrics     bool   `toml:"Metrics"`
}

// Staking configures the staking pool. Without a TiersFile the default
// programme tiers are used.
type Staking struct {
	Name         string   `toml:"Name"`
	LockDuration Duration `toml:"LockDuration"`
	TiersFile    string   `toml:"TiersFile"`
}

// Vesting declares a multi-beneficiary vesting ledger.
type Vesting struct {
	Name       string   `toml:"Name"`
	Start      int64    `toml:"Start"`
	Duration   Duration `toml:"Duration"`
	Admins     []string `toml:"Admins"`
	Initiators []string `toml:"Initiators"`
	Activators []string `toml:"Activators"`
}

// SingleVesting declares a single-beneficiary vesting. An empty Revoker makes
// it non-revocable; a zero Created uses the node clock.
type SingleVesting struct {
	Name        string   `toml:"Name"`
	Beneficiary string   `toml:"Beneficiary"`
	Created     int64    `toml:"Created"`
	Delay       Duration `toml:"Delay"`
	Duration    Duration `toml:"Duration"`
	Revoker     string   `toml:"Revoker"`
}

// Load decodes and validates the TOML file at path. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.dir = filepath.Dir(path)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Token.Symbol) == "" {
		c.Token.Symbol = "YON"
	}
	if strings.TrimSpace(c.Staking.Name) == "" {
		c.Staking.Name = "staking"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = "yonledger"
	}
}

// TiersPath resolves the tier table relative to the config file.
func (c *Config) TiersPath() string {
	path := strings.TrimSpace(c.Staking.TiersFile)
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// CapAmount returns the supply cap in base units, or nil when uncapped.
func (c *Config) CapAmount() (*big.Int, error) {
	if strings.TrimSpace(c.Token.Cap) == "" {
		return nil, nil
	}
	return ParseTokens(c.Token.Cap, c.Token.Decimals)
}

// ParseTokens converts a whole-token decimal string into base units.
// Underscores are accepted as digit separators.
func ParseTokens(raw string, decimals uint8) (*big.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), "_", "")
	value, ok := new(big.Int).SetString(cleaned, 10)
	if !ok {
		return nil, fmt.Errorf("invalid token amount %q", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("token amount %q must not be negative", raw)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return value.Mul(value, scale), nil
}
