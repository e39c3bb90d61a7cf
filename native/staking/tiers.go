package staking

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// BasisPoints is the denominator of Tier.GiftBps.
const BasisPoints = 10_000

// Tier is an inclusive band of accepted principals and the benefits attached
// to it.
type Tier struct {
	Name               string
	MinAmount          *big.Int
	MaxAmount          *big.Int
	GiftBps            uint32
	NoAds              bool
	ExclusiveAdvantage bool
}

// Clone returns a deep copy of the tier.
func (t Tier) Clone() Tier {
	out := t
	out.MinAmount = cloneBigInt(t.MinAmount)
	out.MaxAmount = cloneBigInt(t.MaxAmount)
	return out
}

// Contains reports whether amount falls inside the band.
func (t Tier) Contains(amount *big.Int) bool {
	if amount == nil || t.MinAmount == nil || t.MaxAmount == nil {
		return false
	}
	return amount.Cmp(t.MinAmount) >= 0 && amount.Cmp(t.MaxAmount) <= 0
}

// Gift returns floor(amount * GiftBps / 10000).
func (t Tier) Gift(amount *big.Int) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	gift := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(t.GiftBps)))
	return gift.Quo(gift, big.NewInt(BasisPoints))
}

// Tokens scales a whole-token count by the token decimals.
func Tokens(whole int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(whole), scale)
}

// DefaultTiers returns the exact-amount tiers of the staking programme.
func DefaultTiers(decimals uint8) []Tier {
	small := Tokens(150_000, decimals)
	medium := Tokens(500_000, decimals)
	large := Tokens(1_500_000, decimals)
	return []Tier{
		{Name: "small", MinAmount: small, MaxAmount: cloneBigInt(small), GiftBps: 700, NoAds: true},
		{Name: "medium", MinAmount: medium, MaxAmount: cloneBigInt(medium), GiftBps: 1_100, NoAds: true},
		{Name: "large", MinAmount: large, MaxAmount: cloneBigInt(large), GiftBps: 1_500, NoAds: true, ExclusiveAdvantage: true},
	}
}

// ValidateTiers checks that the table is non-empty with named, positive,
// non-overlapping bands. It returns the tiers ordered by MinAmount.
func ValidateTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return nil, ErrInvalidTiers
	}
	out := make([]Tier, len(tiers))
	seen := make(map[string]struct{}, len(tiers))
	for i, tier := range tiers {
		name := strings.TrimSpace(tier.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTiers, i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidTiers, name)
		}
		seen[name] = struct{}{}
		if tier.MinAmount == nil || tier.MinAmount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: tier %q minimum must be positive", ErrInvalidTiers, name)
		}
		if tier.MaxAmount == nil || tier.MaxAmount.Cmp(tier.MinAmount) < 0 {
			return nil, fmt.Errorf("%w: tier %q maximum below minimum", ErrInvalidTiers, name)
		}
		if tier.GiftBps > BasisPoints {
			return nil, fmt.Errorf("%w: tier %q gift exceeds 100%%", ErrInvalidTiers, name)
		}
		out[i] = tier.Clone()
		out[i].Name = name
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinAmount.Cmp(out[j].MinAmount) < 0 })
	for i := 1; i < len(out); i++ {
		if out[i].MinAmount.Cmp(out[i-1].MaxAmount) <= 0 {
			return nil, fmt.Errorf("%w: tiers %q and %q overlap", ErrInvalidTiers, out[i-1].Name, out[i].Name)
		}
	}
	return out, nil
}

// Match returns the tier accepting amount.
func Match(tiers []Tier, amount *big.Int) (Tier, bool) {
	for _, tier := range tiers {
		if tier.Contains(amount) {
			return tier, true
		}
	}
	return Tier{}, false
}
