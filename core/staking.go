package core

import (
	"context"
	"math/big"

	"yonledger/native/staking"
)

// CreatePool registers a staking pool with its lock term and tier table.
func (n *Node) CreatePool(ctx context.Context, id [32]byte, lockDuration int64, tiers []staking.Tier) (*staking.PoolState, error) {
	var out *staking.PoolState
	err := n.mutate(ctx, moduleStaking, "create", func(tx *txn) error {
		created, err := tx.pool.Create(id, lockDuration, tiers)
		if err != nil {
			return err
		}
		tx.touchPool(id)
		out = created
		return nil
	})
	return out, err
}

// FundPool moves amount from funder into the reward pool. The allowance of
// the pool custody is granted in the same commit.
func (n *Node) FundPool(ctx context.Context, id [32]byte, funder [20]byte, amount *big.Int) error {
	return n.mutate(ctx, moduleStaking, "fund", func(tx *txn) error {
		if err := tx.token.Approve(funder, staking.Custody(id), amount); err != nil {
			return err
		}
		tx.touchPool(id)
		return tx.pool.IncreaseRewardPool(id, funder, amount)
	})
}

// Join locks amount from depositor for the pool term.
func (n *Node) Join(ctx context.Context, id [32]byte, depositor [20]byte, amount *big.Int) (*staking.Position, error) {
	var out *staking.Position
	err := n.mutate(ctx, moduleStaking, "join", func(tx *txn) error {
		if err := tx.token.Approve(depositor, staking.Custody(id), amount); err != nil {
			return err
		}
		pos, err := tx.pool.Join(id, depositor, amount)
		if err != nil {
			return err
		}
		tx.touchPool(id)
		out = pos
		return nil
	})
	return out, err
}

// ReleaseStake pays principal and gift once the lock has expired.
func (n *Node) ReleaseStake(ctx context.Context, id [32]byte, depositor [20]byte) (*big.Int, error) {
	var paid *big.Int
	err := n.mutate(ctx, moduleStaking, "release", func(tx *txn) error {
		amount, err := tx.pool.Release(id, depositor)
		if err != nil {
			return err
		}
		tx.touchPool(id)
		paid = amount
		return nil
	})
	return paid, err
}

// Pool returns the stored pool record.
func (n *Node) Pool(ctx context.Context, id [32]byte) (*staking.PoolState, error) {
	var out *staking.PoolState
	err := n.read(ctx, moduleStaking, "get", func(tx *txn) error {
		var err error
		out, err = tx.pool.Get(id)
		return err
	})
	return out, err
}

// StakePosition returns who's position in the pool.
func (n *Node) StakePosition(ctx context.Context, id [32]byte, who [20]byte) (*staking.Position, error) {
	var out *staking.Position
	err := n.read(ctx, moduleStaking, "position", func(tx *txn) error {
		var err error
		out, err = tx.pool.Position(id, who)
		return err
	})
	return out, err
}

// StakeReleasable returns principal plus gift until the position is released.
func (n *Node) StakeReleasable(ctx context.Context, id [32]byte, who [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.read(ctx, moduleStaking, "releasable", func(tx *txn) error {
		var err error
		out, err = tx.pool.Releasable(id, who)
		return err
	})
	return out, err
}
