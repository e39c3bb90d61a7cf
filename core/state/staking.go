package state

import (
	"fmt"
	"math/big"

	"yonledger/native/staking"
)

func stakingPoolKey(id [32]byte) []byte {
	return joinKey(stakingPoolPrefix, id[:])
}

func stakingPositionKey(id [32]byte, who [20]byte) []byte {
	return joinKey(stakingPositionPrefix, id[:], who[:])
}

type storedTier struct {
	Name               string
	MinAmount          *big.Int
	MaxAmount          *big.Int
	GiftBps            uint32
	NoAds              bool
	ExclusiveAdvantage bool
}

type storedPool struct {
	ID           [32]byte
	RewardPool   *big.Int
	Reserved     *big.Int
	LockDuration uint64
	Tiers        []storedTier
}

type storedPosition struct {
	Depositor          [20]byte
	Principal          *big.Int
	Gift               *big.Int
	Tier               string
	NoAds              bool
	ExclusiveAdvantage bool
	JoinedAt           uint64
	UnlockDate         uint64
	Released           bool
}

// StakingPoolGet loads a staking pool record.
func (m *Manager) StakingPoolGet(id [32]byte) (*staking.PoolState, bool, error) {
	var stored storedPool
	ok, err := m.KVGet(stakingPoolKey(id), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	pool := &staking.PoolState{
		ID:           stored.ID,
		RewardPool:   nonNil(stored.RewardPool),
		Reserved:     nonNil(stored.Reserved),
		LockDuration: int64(stored.LockDuration),
		Tiers:        make([]staking.Tier, len(stored.Tiers)),
	}
	for i, tier := range stored.Tiers {
		pool.Tiers[i] = staking.Tier{
			Name:               tier.Name,
			MinAmount:          nonNil(tier.MinAmount),
			MaxAmount:          nonNil(tier.MaxAmount),
			GiftBps:            tier.GiftBps,
			NoAds:              tier.NoAds,
			ExclusiveAdvantage: tier.ExclusiveAdvantage,
		}
	}
	return pool, true, nil
}

// StakingPoolPut stores a staking pool record.
func (m *Manager) StakingPoolPut(pool *staking.PoolState) error {
	if pool == nil {
		return fmt.Errorf("staking: nil pool")
	}
	stored := &storedPool{
		ID:           pool.ID,
		RewardPool:   nonNil(pool.RewardPool),
		Reserved:     nonNil(pool.Reserved),
		LockDuration: uint64(pool.LockDuration),
		Tiers:        make([]storedTier, len(pool.Tiers)),
	}
	for i, tier := range pool.Tiers {
		stored.Tiers[i] = storedTier{
			Name:               tier.Name,
			MinAmount:          nonNil(tier.MinAmount),
			MaxAmount:          nonNil(tier.MaxAmount),
			GiftBps:            tier.GiftBps,
			NoAds:              tier.NoAds,
			ExclusiveAdvantage: tier.ExclusiveAdvantage,
		}
	}
	return m.KVPut(stakingPoolKey(pool.ID), stored)
}

// StakingPositionGet loads the position of who within pool id.
func (m *Manager) StakingPositionGet(id [32]byte, who [20]byte) (*staking.Position, bool, error) {
	var stored storedPosition
	ok, err := m.KVGet(stakingPositionKey(id, who), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &staking.Position{
		Depositor:          stored.Depositor,
		Principal:          nonNil(stored.Principal),
		Gift:               nonNil(stored.Gift),
		Tier:               stored.Tier,
		NoAds:              stored.NoAds,
		ExclusiveAdvantage: stored.ExclusiveAdvantage,
		JoinedAt:           int64(stored.JoinedAt),
		UnlockDate:         int64(stored.UnlockDate),
		Released:           stored.Released,
	}, true, nil
}

// StakingPositionPut stores a position.
func (m *Manager) StakingPositionPut(id [32]byte, pos *staking.Position) error {
	if pos == nil {
		return fmt.Errorf("staking: nil position")
	}
	return m.KVPut(stakingPositionKey(id, pos.Depositor), &storedPosition{
		Depositor:          pos.Depositor,
		Principal:          nonNil(pos.Principal),
		Gift:               nonNil(pos.Gift),
		Tier:               pos.Tier,
		NoAds:              pos.NoAds,
		ExclusiveAdvantage: pos.ExclusiveAdvantage,
		JoinedAt:           uint64(pos.JoinedAt),
		UnlockDate:         uint64(pos.UnlockDate),
		Released:           pos.Released,
	})
}

// StakingPositionDelete removes a position.
func (m *Manager) StakingPositionDelete(id [32]byte, who [20]byte) error {
	return m.KVDelete(stakingPositionKey(id, who))
}
