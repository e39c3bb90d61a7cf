package vesting

import (
	"fmt"
	"math/big"

	"yonledger/native/access"
	"yonledger/native/common"
	"yonledger/native/release"
)

const (
	kindSingle = "single"
	// roleBeneficiary names the capability reported when a non-beneficiary
	// attempts a single vesting release.
	roleBeneficiary = "BENEFICIARY"
)

// Single runs one-beneficiary vestings. The allocation is whatever has been
// deposited to the custody account plus what has already been released.
type Single struct {
	base
	bounds release.Bounds
	// inFlight holds amounts already counted in Released whose transfer out
	// of custody has not completed yet.
	inFlight map[[32]byte]*big.Int
}

// NewSingle creates a single vesting engine with the default delay and
// duration bounds.
func NewSingle() *Single {
	return &Single{base: newBase(), bounds: release.DefaultBounds(), inFlight: make(map[[32]byte]*big.Int)}
}

// SetBounds overrides the delay and duration bounds applied by CreateSingle.
func (s *Single) SetBounds(bounds release.Bounds) { s.bounds = bounds }

func (s *Single) roles(id [32]byte) *access.Controller {
	return access.NewController(s.state, SingleCustody(id), moduleName)
}

func (s *Single) load(id [32]byte) (*SingleState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	single, ok, err := s.state.VestingSingleGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || single == nil {
		return nil, ErrLedgerNotFound
	}
	return single, nil
}

// CreateSingle stores a new single vesting starting Delay seconds after
// Created and seeds the revoker role when one is given.
func (s *Single) CreateSingle(params SingleParams) (*SingleState, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if params.Beneficiary == ([20]byte{}) {
		return nil, ErrZeroBeneficiary
	}
	created := params.Created
	if created == 0 {
		created = s.now()
	}
	schedule, err := release.FromDelay(created, params.Delay, params.Duration, s.bounds)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.state.VestingSingleGet(params.ID); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrLedgerExists
	}
	single := &SingleState{
		ID:            params.ID,
		Beneficiary:   params.Beneficiary,
		Schedule:      schedule,
		Released:      big.NewInt(0),
		Revocable:     params.Revoker != ([20]byte{}),
		RevokedVested: big.NewInt(0),
	}
	if single.Revocable {
		if err := s.roles(params.ID).Seed(access.RoleRevoker, params.Revoker); err != nil {
			return nil, err
		}
	}
	if err := s.state.VestingSinglePut(single); err != nil {
		return nil, err
	}
	return single.Clone(), nil
}

// Get returns a copy of the single vesting record.
func (s *Single) Get(id [32]byte) (*SingleState, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return single.Clone(), nil
}

func (s *Single) allocation(single *SingleState) (*big.Int, error) {
	balance, err := s.balanceOf(SingleCustody(single.ID))
	if err != nil {
		return nil, err
	}
	balance.Add(balance, cloneBigInt(single.Released))
	if pending, ok := s.inFlight[single.ID]; ok {
		balance.Sub(balance, pending)
	}
	return balance, nil
}

// vested returns the current ceiling of the vesting: the frozen amount after
// a revocation, the schedule otherwise.
func (s *Single) vested(single *SingleState, allocation *big.Int) (*big.Int, error) {
	if single.Revoked {
		return cloneBigInt(single.RevokedVested), nil
	}
	return single.Schedule.Vested(allocation, s.now())
}

// Allocation returns the custody balance plus the released amount.
func (s *Single) Allocation(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return s.allocation(single)
}

// Vested returns the amount accrued so far, capped by the revocation ceiling.
func (s *Single) Vested(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	allocation, err := s.allocation(single)
	if err != nil {
		return nil, err
	}
	return s.vested(single, allocation)
}

// Released returns the amount already paid to the beneficiary.
func (s *Single) Released(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(single.Released), nil
}

// Releasable returns the vested amount not yet released.
func (s *Single) Releasable(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return s.releasable(single)
}

func (s *Single) releasable(single *SingleState) (*big.Int, error) {
	allocation, err := s.allocation(single)
	if err != nil {
		return nil, err
	}
	vested, err := s.vested(single, allocation)
	if err != nil {
		return nil, err
	}
	return release.Remaining(vested, single.Released), nil
}

// Locked returns the amount still to vest. It is zero once revoked.
func (s *Single) Locked(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if single.Revoked {
		return big.NewInt(0), nil
	}
	allocation, err := s.allocation(single)
	if err != nil {
		return nil, err
	}
	return single.Schedule.Locked(allocation, s.now())
}

// Unvested returns the funds left in custody that can no longer vest after a
// revocation. It is zero for a vesting that was not revoked.
func (s *Single) Unvested(id [32]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !single.Revoked {
		return big.NewInt(0), nil
	}
	allocation, err := s.allocation(single)
	if err != nil {
		return nil, err
	}
	return release.Remaining(allocation, single.RevokedVested), nil
}

// Release pays the beneficiary everything vested but not yet released.
func (s *Single) Release(id [32]byte, caller [20]byte) (*big.Int, error) {
	single, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if caller != single.Beneficiary {
		return nil, &common.AuthorizationError{Module: moduleName, Caller: caller, Role: roleBeneficiary}
	}
	if s.token == nil {
		return nil, errNilToken
	}
	amount, err := s.releasable(single)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, ErrNothingToRelease
	}
	prev := single.Clone()
	single.Released = new(big.Int).Add(cloneBigInt(single.Released), amount)
	if err := s.state.VestingSinglePut(single); err != nil {
		return nil, err
	}
	s.inFlight[id] = amount
	err = s.token.Transfer(SingleCustody(id), single.Beneficiary, amount)
	delete(s.inFlight, id)
	if err != nil {
		_ = s.state.VestingSinglePut(prev)
		return nil, fmt.Errorf("vesting: release transfer: %w", err)
	}
	s.emit(ReleasedEvent(id, kindSingle, single.Beneficiary, amount, single.Released))
	return amount, nil
}

// Revoke freezes the vesting at the amount vested now. Funds beyond the
// ceiling stay in custody and are reported by Unvested.
func (s *Single) Revoke(id [32]byte, caller [20]byte) error {
	single, err := s.load(id)
	if err != nil {
		return err
	}
	if !single.Revocable {
		return ErrNotRevocable
	}
	if err := s.roles(id).Require(access.RoleRevoker, caller); err != nil {
		return err
	}
	if single.Revoked {
		return ErrAlreadyRevoked
	}
	allocation, err := s.allocation(single)
	if err != nil {
		return err
	}
	now := s.now()
	ceiling, err := single.Schedule.Vested(allocation, now)
	if err != nil {
		return err
	}
	single.Revoked = true
	single.RevokedVested = ceiling
	single.RevokedAt = now
	if err := s.state.VestingSinglePut(single); err != nil {
		return err
	}
	s.emit(RevokedEvent(id, caller, ceiling, release.Remaining(allocation, ceiling), now))
	return nil
}

// RenounceRevoker drops the revoker role from the caller. Once no revoker
// remains the vesting can no longer be revoked.
func (s *Single) RenounceRevoker(id [32]byte, caller [20]byte) error {
	if _, err := s.load(id); err != nil {
		return err
	}
	return s.roles(id).Renounce(caller, access.RoleRevoker)
}
