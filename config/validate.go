package config

import (
	"fmt"
	"strings"
	"time"

	"yonledger/crypto"
	"yonledger/native/release"
	"yonledger/storage"
)

// MaxDecimals bounds Token.Decimals.
const MaxDecimals = 36

var maxSingleWindow = time.Duration(release.DefaultBounds().MaxDuration) * time.Second

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Node.Backend)) {
	case "", storage.BackendLevelDB, storage.BackendBolt:
	default:
		return fmt.Errorf("node: unknown backend %q", c.Node.Backend)
	}
	if c.Token.Decimals > MaxDecimals {
		return fmt.Errorf("token: decimals must not exceed %d", MaxDecimals)
	}
	if _, err := c.CapAmount(); err != nil {
		return fmt.Errorf("token: cap: %w", err)
	}
	for i, alloc := range c.Token.Allocation {
		if _, err := crypto.ParseAddress(alloc.Address); err != nil {
			return fmt.Errorf("token: allocation %d: %w", i, err)
		}
		amount, err := ParseTokens(alloc.Amount, c.Token.Decimals)
		if err != nil {
			return fmt.Errorf("token: allocation %d: %w", i, err)
		}
		if amount.Sign() == 0 {
			return fmt.Errorf("token: allocation %d: amount must be greater than 0", i)
		}
	}
	if c.Staking.LockDuration.Duration < time.Second {
		return fmt.Errorf("staking: lock duration must be at least one second")
	}

	names := map[string]struct{}{strings.TrimSpace(c.Staking.Name): {}}
	claim := func(section, name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%s: name required", section)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("%s: duplicate instance name %q", section, name)
		}
		names[name] = struct{}{}
		return nil
	}

	for _, v := range c.Vesting {
		if err := claim("vesting", v.Name); err != nil {
			return err
		}
		if v.Duration.Duration < time.Second {
			return fmt.Errorf("vesting %s: duration must be at least one second", v.Name)
		}
		if len(v.Initiators) == 0 || len(v.Activators) == 0 {
			return fmt.Errorf("vesting %s: initiators and activators required", v.Name)
		}
		for _, group := range [][]string{v.Admins, v.Initiators, v.Activators} {
			if _, err := ParseAddresses(group); err != nil {
				return fmt.Errorf("vesting %s: %w", v.Name, err)
			}
		}
	}
	for _, s := range c.SingleVesting {
		if err := claim("single vesting", s.Name); err != nil {
			return err
		}
		if _, err := crypto.ParseAddress(s.Beneficiary); err != nil {
			return fmt.Errorf("single vesting %s: beneficiary: %w", s.Name, err)
		}
		if s.Delay.Duration < 0 || s.Delay.Duration > maxSingleWindow {
			return fmt.Errorf("single vesting %s: delay out of range", s.Name)
		}
		if s.Duration.Duration < time.Second || s.Duration.Duration > maxSingleWindow {
			return fmt.Errorf("single vesting %s: duration out of range", s.Name)
		}
		if strings.TrimSpace(s.Revoker) != "" {
			if _, err := crypto.ParseAddress(s.Revoker); err != nil {
				return fmt.Errorf("single vesting %s: revoker: %w", s.Name, err)
			}
		}
	}
	return nil
}

// ParseAddresses decodes a list of bech32 or hex addresses.
func ParseAddresses(values []string) ([][20]byte, error) {
	out := make([][20]byte, 0, len(values))
	for _, value := range values {
		addr, err := crypto.ParseAddress(value)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
