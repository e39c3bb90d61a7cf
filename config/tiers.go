package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"yonledger/native/staking"
)

// Duration wraps time.Duration so human readable values ("180s", "4320h")
// decode from both TOML and YAML.
type Duration struct {
	time.Duration
}

// Seconds returns the duration truncated to whole seconds.
func (d Duration) Seconds() int64 {
	return int64(d.Duration / time.Second)
}

// UnmarshalText parses TOML string values.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.parse(string(text))
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(raw string) error {
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// TierTable is the YAML document describing staking tiers.
type TierTable struct {
	Tiers []TierEntry `yaml:"tiers"`
}

// TierEntry is one band of the tier table. Min and Max are whole tokens.
type TierEntry struct {
	Name               string `yaml:"name"`
	Min                string `yaml:"min"`
	Max                string `yaml:"max"`
	GiftBps            uint32 `yaml:"gift_bps"`
	NoAds              bool   `yaml:"no_ads"`
	ExclusiveAdvantage bool   `yaml:"exclusive_advantage"`
}

// LoadTiers reads a YAML tier table and converts it to validated staking
// tiers in base units.
func LoadTiers(path string, decimals uint8) ([]staking.Tier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers: %w", err)
	}
	var table TierTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode tiers: %w", err)
	}
	tiers := make([]staking.Tier, 0, len(table.Tiers))
	for _, entry := range table.Tiers {
		minAmount, err := ParseTokens(entry.Min, decimals)
		if err != nil {
			return nil, fmt.Errorf("tier %s: min: %w", entry.Name, err)
		}
		maxAmount, err := ParseTokens(entry.Max, decimals)
		if err != nil {
			return nil, fmt.Errorf("tier %s: max: %w", entry.Name, err)
		}
		tiers = append(tiers, staking.Tier{
			Name:               entry.Name,
			MinAmount:          minAmount,
			MaxAmount:          maxAmount,
			GiftBps:            entry.GiftBps,
			NoAds:              entry.NoAds,
			ExclusiveAdvantage: entry.ExclusiveAdvantage,
		})
	}
	return staking.ValidateTiers(tiers)
}

// StakingTiers returns the configured tier table or the default programme.
func (c *Config) StakingTiers() ([]staking.Tier, error) {
	if path := c.TiersPath(); path != "" {
		return LoadTiers(path, c.Token.Decimals)
	}
	return staking.DefaultTiers(c.Token.Decimals), nil
}
