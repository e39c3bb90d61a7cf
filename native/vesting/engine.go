package vesting

import (
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"yonledger/core/events"
	"yonledger/native/access"
	"yonledger/native/token"
)

type engineState interface {
	access.Store
	VestingLedgerGet(id [32]byte) (*LedgerState, bool, error)
	VestingLedgerPut(ledger *LedgerState) error
	VestingCommitmentGet(id [32]byte, who [20]byte) (*Commitment, bool, error)
	VestingCommitmentPut(id [32]byte, commitment *Commitment) error
	VestingCommitmentDelete(id [32]byte, who [20]byte) error
	VestingBeneficiaries(id [32]byte) ([][20]byte, error)
	VestingSingleGet(id [32]byte) (*SingleState, bool, error)
	VestingSinglePut(single *SingleState) error
}

var (
	ledgerCustodyDomain = []byte("yonledger/vesting/ledger")
	singleCustodyDomain = []byte("yonledger/vesting/single")
)

// LedgerCustody returns the token account holding the funds of a ledger.
func LedgerCustody(id [32]byte) [20]byte { return deriveCustody(ledgerCustodyDomain, id) }

// SingleCustody returns the token account holding the funds of a single
// vesting.
func SingleCustody(id [32]byte) [20]byte { return deriveCustody(singleCustodyDomain, id) }

func deriveCustody(domain []byte, id [32]byte) [20]byte {
	hash := ethcrypto.Keccak256(domain, id[:])
	var out [20]byte
	copy(out[:], hash[len(hash)-20:])
	return out
}

// base carries the collaborators shared by the ledger and single engines.
type base struct {
	state   engineState
	token   token.Token
	emitter events.Emitter
	nowFn   func() int64
}

func newBase() base {
	return base{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (b *base) SetState(state engineState) { b.state = state }

// SetToken configures the token holding custody balances.
func (b *base) SetToken(tok token.Token) { b.token = tok }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (b *base) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		b.emitter = events.NoopEmitter{}
		return
	}
	b.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine.
func (b *base) SetNowFunc(now func() int64) {
	if now == nil {
		b.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	b.nowFn = now
}

func (b *base) now() int64 {
	if b == nil || b.nowFn == nil {
		return time.Now().Unix()
	}
	return b.nowFn()
}

func (b *base) emit(rec *events.Record) {
	if b == nil || b.emitter == nil || rec == nil {
		return
	}
	b.emitter.Emit(events.Wrap(rec))
}

func (b *base) ready() error {
	if b == nil || b.state == nil {
		return errNilState
	}
	return nil
}

func (b *base) balanceOf(addr [20]byte) (*big.Int, error) {
	if b.token == nil {
		return nil, errNilToken
	}
	balance, err := b.token.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(balance), nil
}
