package staking

import (
	"math/big"
)

// Position is the locked commitment of one depositor.
type Position struct {
	Depositor          [20]byte
	Principal          *big.Int
	Gift               *big.Int
	Tier               string
	NoAds              bool
	ExclusiveAdvantage bool
	JoinedAt           int64
	UnlockDate         int64
	Released           bool
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	out := *p
	out.Principal = cloneBigInt(p.Principal)
	out.Gift = cloneBigInt(p.Gift)
	return &out
}

// Payout is the amount returned to the depositor on release.
func (p *Position) Payout() *big.Int {
	if p == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Add(cloneBigInt(p.Principal), cloneBigInt(p.Gift))
}

// PoolState is the aggregate record of a staking pool. RewardPool holds the
// unreserved funds; Reserved the gifts owed to unreleased positions.
type PoolState struct {
	ID           [32]byte
	RewardPool   *big.Int
	Reserved     *big.Int
	LockDuration int64
	Tiers        []Tier
}

// Clone returns a deep copy of the pool state.
func (p *PoolState) Clone() *PoolState {
	if p == nil {
		return nil
	}
	out := *p
	out.RewardPool = cloneBigInt(p.RewardPool)
	out.Reserved = cloneBigInt(p.Reserved)
	out.Tiers = make([]Tier, len(p.Tiers))
	for i := range p.Tiers {
		out.Tiers[i] = p.Tiers[i].Clone()
	}
	return &out
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
