package vesting

import (
	"math/big"

	"yonledger/native/release"
)

// Mode is the lifecycle phase of a vesting ledger.
type Mode uint8

const (
	// ModeSetup allows the beneficiary set to change; nothing is releasable.
	ModeSetup Mode = iota
	// ModeLive freezes the beneficiary set and enables release.
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeSetup:
		return "setup"
	case ModeLive:
		return "live"
	default:
		return "unknown"
	}
}

// Commitment is the allocation of one beneficiary within a ledger.
type Commitment struct {
	Beneficiary [20]byte
	Amount      *big.Int
	Released    *big.Int
}

// Clone returns a deep copy of the commitment.
func (c *Commitment) Clone() *Commitment {
	if c == nil {
		return nil
	}
	out := *c
	out.Amount = cloneBigInt(c.Amount)
	out.Released = cloneBigInt(c.Released)
	return &out
}

// LedgerState is the aggregate record of a multi-beneficiary vesting.
type LedgerState struct {
	ID             [32]byte
	Schedule       release.Schedule
	Mode           Mode
	TotalCommitted *big.Int
	TotalReleased  *big.Int
}

// Clone returns a deep copy of the ledger state.
func (s *LedgerState) Clone() *LedgerState {
	if s == nil {
		return nil
	}
	out := *s
	out.TotalCommitted = cloneBigInt(s.TotalCommitted)
	out.TotalReleased = cloneBigInt(s.TotalReleased)
	return &out
}

// Live reports whether the ledger accepts releases.
func (s *LedgerState) Live() bool { return s != nil && s.Mode == ModeLive }

// SingleState is the record of a one-beneficiary vesting. The allocation is
// not stored: it is the custody balance plus Released.
type SingleState struct {
	ID            [32]byte
	Beneficiary   [20]byte
	Schedule      release.Schedule
	Released      *big.Int
	Revocable     bool
	Revoked       bool
	RevokedVested *big.Int
	RevokedAt     int64
}

// Clone returns a deep copy of the single vesting state.
func (s *SingleState) Clone() *SingleState {
	if s == nil {
		return nil
	}
	out := *s
	out.Released = cloneBigInt(s.Released)
	out.RevokedVested = cloneBigInt(s.RevokedVested)
	return &out
}

// Roles seeds the role holders of a new ledger.
type Roles struct {
	Admins     [][20]byte
	Initiators [][20]byte
	Activators [][20]byte
}

// SingleParams describes a new single vesting. A zero Created uses the engine
// clock; a zero Revoker makes the vesting non-revocable.
type SingleParams struct {
	ID          [32]byte
	Beneficiary [20]byte
	Created     int64
	Delay       int64
	Duration    int64
	Revoker     [20]byte
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
