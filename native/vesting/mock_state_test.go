package vesting

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"yonledger/core/events"
	"yonledger/native/access"
	"yonledger/native/token"
)

type mockState struct {
	*access.MemoryStore
	ledgers     map[[32]byte]*LedgerState
	commitments map[[32]byte]map[[20]byte]*Commitment
	singles     map[[32]byte]*SingleState
}

func newMockState() *mockState {
	return &mockState{
		MemoryStore: access.NewMemoryStore(),
		ledgers:     make(map[[32]byte]*LedgerState),
		commitments: make(map[[32]byte]map[[20]byte]*Commitment),
		singles:     make(map[[32]byte]*SingleState),
	}
}

func (m *mockState) VestingLedgerGet(id [32]byte) (*LedgerState, bool, error) {
	ledger, ok := m.ledgers[id]
	if !ok {
		return nil, false, nil
	}
	return ledger.Clone(), true, nil
}

func (m *mockState) VestingLedgerPut(ledger *LedgerState) error {
	m.ledgers[ledger.ID] = ledger.Clone()
	return nil
}

func (m *mockState) VestingCommitmentGet(id [32]byte, who [20]byte) (*Commitment, bool, error) {
	c, ok := m.commitments[id][who]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (m *mockState) VestingCommitmentPut(id [32]byte, c *Commitment) error {
	if m.commitments[id] == nil {
		m.commitments[id] = make(map[[20]byte]*Commitment)
	}
	m.commitments[id][c.Beneficiary] = c.Clone()
	return nil
}

func (m *mockState) VestingCommitmentDelete(id [32]byte, who [20]byte) error {
	delete(m.commitments[id], who)
	return nil
}

func (m *mockState) VestingBeneficiaries(id [32]byte) ([][20]byte, error) {
	out := make([][20]byte, 0, len(m.commitments[id]))
	for who := range m.commitments[id] {
		out = append(out, who)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out, nil
}

func (m *mockState) VestingSingleGet(id [32]byte) (*SingleState, bool, error) {
	single, ok := m.singles[id]
	if !ok {
		return nil, false, nil
	}
	return single.Clone(), true, nil
}

func (m *mockState) VestingSinglePut(single *SingleState) error {
	m.singles[single.ID] = single.Clone()
	return nil
}

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func (c *capturingEmitter) types() []string {
	out := make([]string, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.EventType())
	}
	return out
}

// hookToken wraps the reference token and runs a hook before every transfer.
type hookToken struct {
	*token.Ledger
	beforeTransfer func() error
}

func (h *hookToken) Transfer(from, to [20]byte, amount *big.Int) error {
	if h.beforeTransfer != nil {
		if err := h.beforeTransfer(); err != nil {
			return err
		}
	}
	return h.Ledger.Transfer(from, to, amount)
}

var errTransferRejected = errors.New("transfer rejected")

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func newTestID(fill byte) [32]byte {
	var id [32]byte
	copy(id[:], bytes.Repeat([]byte{fill}, 32))
	return id
}
