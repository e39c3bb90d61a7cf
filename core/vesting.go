package core

import (
	"context"
	"math/big"

	"yonledger/native/release"
	"yonledger/native/vesting"
)

// VestingTotals aggregates a live ledger.
type VestingTotals struct {
	Vested     *big.Int
	Releasable *big.Int
	Released   *big.Int
}

// SingleSummary is a point-in-time view of a single vesting.
type SingleSummary struct {
	State      *vesting.SingleState
	Allocation *big.Int
	Vested     *big.Int
	Releasable *big.Int
	Locked     *big.Int
	Unvested   *big.Int
}

// CreateVesting registers a multi-beneficiary ledger in setup mode.
func (n *Node) CreateVesting(ctx context.Context, id [32]byte, schedule release.Schedule, roles vesting.Roles) (*vesting.LedgerState, error) {
	var out *vesting.LedgerState
	err := n.mutate(ctx, moduleVesting, "create", func(tx *txn) error {
		created, err := tx.ledger.Create(id, schedule, roles)
		if err != nil {
			return err
		}
		tx.touchLedger(id)
		out = created
		return nil
	})
	return out, err
}

// AppendBeneficiary commits amount to who while the ledger is in setup.
func (n *Node) AppendBeneficiary(ctx context.Context, id [32]byte, caller, who [20]byte, amount *big.Int) error {
	return n.mutate(ctx, moduleVesting, "append", func(tx *txn) error {
		tx.touchLedger(id)
		return tx.ledger.AppendBeneficiary(id, caller, who, amount)
	})
}

// RemoveBeneficiary drops who and its commitment while the ledger is in setup.
func (n *Node) RemoveBeneficiary(ctx context.Context, id [32]byte, caller, who [20]byte) error {
	return n.mutate(ctx, moduleVesting, "remove", func(tx *txn) error {
		tx.touchLedger(id)
		return tx.ledger.RemoveBeneficiary(id, caller, who)
	})
}

// SetLive freezes the ledger composition. The custody account must already
// hold the committed total.
func (n *Node) SetLive(ctx context.Context, id [32]byte, caller [20]byte) error {
	return n.mutate(ctx, moduleVesting, "set_live", func(tx *txn) error {
		return tx.ledger.SetLive(id, caller)
	})
}

// ReleaseVesting pays the caller's releasable share of a live ledger.
func (n *Node) ReleaseVesting(ctx context.Context, id [32]byte, caller [20]byte) (*big.Int, error) {
	var paid *big.Int
	err := n.mutate(ctx, moduleVesting, "release", func(tx *txn) error {
		amount, err := tx.ledger.Release(id, caller)
		if err != nil {
			return err
		}
		tx.touchLedger(id)
		paid = amount
		return nil
	})
	return paid, err
}

// GrantVestingRole gives who a role on the ledger.
func (n *Node) GrantVestingRole(ctx context.Context, id [32]byte, caller [20]byte, role string, who [20]byte) error {
	return n.mutate(ctx, moduleVesting, "grant_role", func(tx *txn) error {
		return tx.ledger.GrantRole(id, caller, role, who)
	})
}

// RevokeVestingRole removes a role from who.
func (n *Node) RevokeVestingRole(ctx context.Context, id [32]byte, caller [20]byte, role string, who [20]byte) error {
	return n.mutate(ctx, moduleVesting, "revoke_role", func(tx *txn) error {
		return tx.ledger.RevokeRole(id, caller, role, who)
	})
}

// RenounceVestingRole drops a role held by the caller.
func (n *Node) RenounceVestingRole(ctx context.Context, id [32]byte, caller [20]byte, role string) error {
	return n.mutate(ctx, moduleVesting, "renounce_role", func(tx *txn) error {
		return tx.ledger.RenounceRole(id, caller, role)
	})
}

// HasVestingRole reports whether who holds role on the ledger.
func (n *Node) HasVestingRole(ctx context.Context, id [32]byte, role string, who [20]byte) (bool, error) {
	var ok bool
	err := n.read(ctx, moduleVesting, "has_role", func(tx *txn) error {
		var err error
		ok, err = tx.ledger.HasRole(id, role, who)
		return err
	})
	return ok, err
}

// VestingLedger returns the stored ledger record.
func (n *Node) VestingLedger(ctx context.Context, id [32]byte) (*vesting.LedgerState, error) {
	var out *vesting.LedgerState
	err := n.read(ctx, moduleVesting, "get", func(tx *txn) error {
		var err error
		out, err = tx.ledger.Get(id)
		return err
	})
	return out, err
}

// VestingAmounts returns vested, released, releasable and locked amounts of
// one beneficiary.
func (n *Node) VestingAmounts(ctx context.Context, id [32]byte, who [20]byte) (vested, released, releasable, locked *big.Int, err error) {
	err = n.read(ctx, moduleVesting, "amounts", func(tx *txn) error {
		var err error
		if vested, err = tx.ledger.Vested(id, who); err != nil {
			return err
		}
		if released, err = tx.ledger.Released(id, who); err != nil {
			return err
		}
		if releasable, err = tx.ledger.Releasable(id, who); err != nil {
			return err
		}
		locked, err = tx.ledger.Locked(id, who)
		return err
	})
	return vested, released, releasable, locked, err
}

// VestingCommitment returns who's commitment. Only initiators and
// activators may read it.
func (n *Node) VestingCommitment(ctx context.Context, id [32]byte, caller, who [20]byte) (*vesting.Commitment, error) {
	var out *vesting.Commitment
	err := n.read(ctx, moduleVesting, "commitment", func(tx *txn) error {
		var err error
		out, err = tx.ledger.Commitment(id, caller, who)
		return err
	})
	return out, err
}

// VestingTotalCommitted returns the sum of all commitments.
func (n *Node) VestingTotalCommitted(ctx context.Context, id [32]byte, caller [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.read(ctx, moduleVesting, "total_committed", func(tx *txn) error {
		var err error
		out, err = tx.ledger.TotalCommitted(id, caller)
		return err
	})
	return out, err
}

// VestingBeneficiaries lists the ledger's beneficiaries in address order.
func (n *Node) VestingBeneficiaries(ctx context.Context, id [32]byte) ([][20]byte, error) {
	var out [][20]byte
	err := n.read(ctx, moduleVesting, "beneficiaries", func(tx *txn) error {
		var err error
		out, err = tx.ledger.Beneficiaries(id)
		return err
	})
	return out, err
}

// VestingTotals aggregates a live ledger across all beneficiaries.
func (n *Node) VestingTotals(ctx context.Context, id [32]byte) (*VestingTotals, error) {
	out := &VestingTotals{}
	err := n.read(ctx, moduleVesting, "totals", func(tx *txn) error {
		var err error
		if out.Vested, err = tx.ledger.TotalVested(id); err != nil {
			return err
		}
		if out.Releasable, err = tx.ledger.TotalReleasable(id); err != nil {
			return err
		}
		out.Released, err = tx.ledger.TotalReleased(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSingleVesting registers a single-beneficiary vesting.
func (n *Node) CreateSingleVesting(ctx context.Context, params vesting.SingleParams) (*vesting.SingleState, error) {
	var out *vesting.SingleState
	err := n.mutate(ctx, moduleSingle, "create", func(tx *txn) error {
		var err error
		out, err = tx.single.CreateSingle(params)
		return err
	})
	return out, err
}

// ReleaseSingle pays the beneficiary what has vested so far.
func (n *Node) ReleaseSingle(ctx context.Context, id [32]byte, caller [20]byte) (*big.Int, error) {
	var paid *big.Int
	err := n.mutate(ctx, moduleSingle, "release", func(tx *txn) error {
		var err error
		paid, err = tx.single.Release(id, caller)
		return err
	})
	return paid, err
}

// RevokeSingle freezes a revocable vesting at its current vested amount.
func (n *Node) RevokeSingle(ctx context.Context, id [32]byte, caller [20]byte) error {
	return n.mutate(ctx, moduleSingle, "revoke", func(tx *txn) error {
		return tx.single.Revoke(id, caller)
	})
}

// RenounceSingleRevoker drops the caller's revoker role for good.
func (n *Node) RenounceSingleRevoker(ctx context.Context, id [32]byte, caller [20]byte) error {
	return n.mutate(ctx, moduleSingle, "renounce_revoker", func(tx *txn) error {
		return tx.single.RenounceRevoker(id, caller)
	})
}

// SingleVesting returns the record together with its derived amounts.
func (n *Node) SingleVesting(ctx context.Context, id [32]byte) (*SingleSummary, error) {
	out := &SingleSummary{}
	err := n.read(ctx, moduleSingle, "get", func(tx *txn) error {
		var err error
		if out.State, err = tx.single.Get(id); err != nil {
			return err
		}
		if out.Allocation, err = tx.single.Allocation(id); err != nil {
			return err
		}
		if out.Vested, err = tx.single.Vested(id); err != nil {
			return err
		}
		if out.Releasable, err = tx.single.Releasable(id); err != nil {
			return err
		}
		if out.Locked, err = tx.single.Locked(id); err != nil {
			return err
		}
		out.Unvested, err = tx.single.Unvested(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
