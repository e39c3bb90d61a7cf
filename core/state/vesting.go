package state

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"yonledger/native/release"
	"yonledger/native/vesting"
)

func vestingLedgerKey(id [32]byte) []byte {
	return joinKey(vestingLedgerPrefix, id[:])
}

func vestingCommitmentKey(id [32]byte, who [20]byte) []byte {
	return joinKey(vestingCommitmentPrefix, id[:], who[:])
}

func vestingIndexKey(id [32]byte) []byte {
	return joinKey(vestingIndexPrefix, id[:])
}

func vestingSingleKey(id [32]byte) []byte {
	return joinKey(vestingSinglePrefix, id[:])
}

type storedLedger struct {
	ID             [32]byte
	Start          uint64
	Duration       uint64
	Mode           uint8
	TotalCommitted *big.Int
	TotalReleased  *big.Int
}

func newStoredLedger(l *vesting.LedgerState) *storedLedger {
	return &storedLedger{
		ID:             l.ID,
		Start:          uint64(l.Schedule.Start),
		Duration:       uint64(l.Schedule.Duration),
		Mode:           uint8(l.Mode),
		TotalCommitted: nonNil(l.TotalCommitted),
		TotalReleased:  nonNil(l.TotalReleased),
	}
}

func (s *storedLedger) toLedger() *vesting.LedgerState {
	return &vesting.LedgerState{
		ID:             s.ID,
		Schedule:       release.Schedule{Start: int64(s.Start), Duration: int64(s.Duration)},
		Mode:           vesting.Mode(s.Mode),
		TotalCommitted: nonNil(s.TotalCommitted),
		TotalReleased:  nonNil(s.TotalReleased),
	}
}

type storedCommitment struct {
	Beneficiary [20]byte
	Amount      *big.Int
	Released    *big.Int
}

type storedSingle struct {
	ID            [32]byte
	Beneficiary   [20]byte
	Start         uint64
	Duration      uint64
	Released      *big.Int
	Revocable     bool
	Revoked       bool
	RevokedVested *big.Int
	RevokedAt     uint64
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// VestingLedgerGet loads a vesting ledger record.
func (m *Manager) VestingLedgerGet(id [32]byte) (*vesting.LedgerState, bool, error) {
	var stored storedLedger
	ok, err := m.KVGet(vestingLedgerKey(id), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return stored.toLedger(), true, nil
}

// VestingLedgerPut stores a vesting ledger record.
func (m *Manager) VestingLedgerPut(ledger *vesting.LedgerState) error {
	if ledger == nil {
		return fmt.Errorf("vesting: nil ledger")
	}
	return m.KVPut(vestingLedgerKey(ledger.ID), newStoredLedger(ledger))
}

// VestingCommitmentGet loads the commitment of who within ledger id.
func (m *Manager) VestingCommitmentGet(id [32]byte, who [20]byte) (*vesting.Commitment, bool, error) {
	var stored storedCommitment
	ok, err := m.KVGet(vestingCommitmentKey(id, who), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &vesting.Commitment{
		Beneficiary: stored.Beneficiary,
		Amount:      nonNil(stored.Amount),
		Released:    nonNil(stored.Released),
	}, true, nil
}

// VestingCommitmentPut stores a commitment and records the beneficiary in the
// ledger index.
func (m *Manager) VestingCommitmentPut(id [32]byte, c *vesting.Commitment) error {
	if c == nil {
		return fmt.Errorf("vesting: nil commitment")
	}
	stored := &storedCommitment{Beneficiary: c.Beneficiary, Amount: nonNil(c.Amount), Released: nonNil(c.Released)}
	if err := m.KVPut(vestingCommitmentKey(id, c.Beneficiary), stored); err != nil {
		return err
	}
	index, err := m.VestingBeneficiaries(id)
	if err != nil {
		return err
	}
	pos := sort.Search(len(index), func(i int) bool { return bytes.Compare(index[i][:], c.Beneficiary[:]) >= 0 })
	if pos < len(index) && index[pos] == c.Beneficiary {
		return nil
	}
	index = append(index, [20]byte{})
	copy(index[pos+1:], index[pos:])
	index[pos] = c.Beneficiary
	return m.KVPut(vestingIndexKey(id), index)
}

// VestingCommitmentDelete removes a commitment and its index entry.
func (m *Manager) VestingCommitmentDelete(id [32]byte, who [20]byte) error {
	if err := m.KVDelete(vestingCommitmentKey(id, who)); err != nil {
		return err
	}
	index, err := m.VestingBeneficiaries(id)
	if err != nil {
		return err
	}
	kept := index[:0]
	for _, member := range index {
		if member != who {
			kept = append(kept, member)
		}
	}
	if len(kept) == 0 {
		return m.KVDelete(vestingIndexKey(id))
	}
	return m.KVPut(vestingIndexKey(id), kept)
}

// VestingBeneficiaries returns the sorted beneficiaries of ledger id.
func (m *Manager) VestingBeneficiaries(id [32]byte) ([][20]byte, error) {
	var index [][20]byte
	if _, err := m.KVGet(vestingIndexKey(id), &index); err != nil {
		return nil, err
	}
	if index == nil {
		return [][20]byte{}, nil
	}
	return index, nil
}

// VestingSingleGet loads a single vesting record.
func (m *Manager) VestingSingleGet(id [32]byte) (*vesting.SingleState, bool, error) {
	var stored storedSingle
	ok, err := m.KVGet(vestingSingleKey(id), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &vesting.SingleState{
		ID:            stored.ID,
		Beneficiary:   stored.Beneficiary,
		Schedule:      release.Schedule{Start: int64(stored.Start), Duration: int64(stored.Duration)},
		Released:      nonNil(stored.Released),
		Revocable:     stored.Revocable,
		Revoked:       stored.Revoked,
		RevokedVested: nonNil(stored.RevokedVested),
		RevokedAt:     int64(stored.RevokedAt),
	}, true, nil
}

// VestingSinglePut stores a single vesting record.
func (m *Manager) VestingSinglePut(single *vesting.SingleState) error {
	if single == nil {
		return fmt.Errorf("vesting: nil single vesting")
	}
	return m.KVPut(vestingSingleKey(single.ID), &storedSingle{
		ID:            single.ID,
		Beneficiary:   single.Beneficiary,
		Start:         uint64(single.Schedule.Start),
		Duration:      uint64(single.Schedule.Duration),
		Released:      nonNil(single.Released),
		Revocable:     single.Revocable,
		Revoked:       single.Revoked,
		RevokedVested: nonNil(single.RevokedVested),
		RevokedAt:     uint64(single.RevokedAt),
	})
}
