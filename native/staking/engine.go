package staking

import (
	"fmt"
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"yonledger/core/events"
	"yonledger/native/token"
)

type engineState interface {
	StakingPoolGet(id [32]byte) (*PoolState, bool, error)
	StakingPoolPut(pool *PoolState) error
	StakingPositionGet(id [32]byte, who [20]byte) (*Position, bool, error)
	StakingPositionPut(id [32]byte, pos *Position) error
	StakingPositionDelete(id [32]byte, who [20]byte) error
}

var custodyDomain = []byte("yonledger/staking/pool")

// Custody returns the token account holding principals and rewards of a pool.
func Custody(id [32]byte) [20]byte {
	hash := ethcrypto.Keccak256(custodyDomain, id[:])
	var out [20]byte
	copy(out[:], hash[len(hash)-20:])
	return out
}

// Pool runs fixed-term staking pools with tiered gifts.
type Pool struct {
	state   engineState
	token   token.Token
	emitter events.Emitter
	nowFn   func() int64
}

// NewPool creates a staking engine with a no-op emitter.
func NewPool() *Pool {
	return &Pool{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (p *Pool) SetState(state engineState) { p.state = state }

// SetToken configures the token holding custody balances.
func (p *Pool) SetToken(tok token.Token) { p.token = tok }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (p *Pool) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		p.emitter = events.NoopEmitter{}
		return
	}
	p.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine.
func (p *Pool) SetNowFunc(now func() int64) {
	if now == nil {
		p.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	p.nowFn = now
}

func (p *Pool) now() int64 {
	if p == nil || p.nowFn == nil {
		return time.Now().Unix()
	}
	return p.nowFn()
}

func (p *Pool) emit(rec *events.Record) {
	if p == nil || p.emitter == nil || rec == nil {
		return
	}
	p.emitter.Emit(events.Wrap(rec))
}

func (p *Pool) load(id [32]byte) (*PoolState, error) {
	if p == nil || p.state == nil {
		return nil, errNilState
	}
	pool, ok, err := p.state.StakingPoolGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || pool == nil {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (p *Pool) position(id [32]byte, who [20]byte) (*Position, bool, error) {
	pos, ok, err := p.state.StakingPositionGet(id, who)
	if err != nil {
		return nil, false, err
	}
	if !ok || pos == nil {
		return nil, false, nil
	}
	return pos, true, nil
}

// Create stores a new empty pool with the given lock term and tier table.
func (p *Pool) Create(id [32]byte, lockDuration int64, tiers []Tier) (*PoolState, error) {
	if p == nil || p.state == nil {
		return nil, errNilState
	}
	if lockDuration <= 0 {
		return nil, ErrInvalidLock
	}
	validated, err := ValidateTiers(tiers)
	if err != nil {
		return nil, err
	}
	if _, ok, err := p.state.StakingPoolGet(id); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrPoolExists
	}
	pool := &PoolState{
		ID:           id,
		RewardPool:   big.NewInt(0),
		Reserved:     big.NewInt(0),
		LockDuration: lockDuration,
		Tiers:        validated,
	}
	if err := p.state.StakingPoolPut(pool); err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// Get returns a copy of the pool record.
func (p *Pool) Get(id [32]byte) (*PoolState, error) {
	pool, err := p.load(id)
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// IncreaseRewardPool pulls amount from funder into the pool custody. The
// funder must have approved the custody account beforehand.
func (p *Pool) IncreaseRewardPool(id [32]byte, funder [20]byte, amount *big.Int) error {
	pool, err := p.load(id)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.token == nil {
		return errNilToken
	}
	next := new(big.Int).Add(cloneBigInt(pool.RewardPool), amount)
	if _, overflow := uint256.FromBig(new(big.Int).Add(next, cloneBigInt(pool.Reserved))); overflow {
		return ErrRewardPoolOverflowed
	}
	prev := pool.Clone()
	pool.RewardPool = next
	if err := p.state.StakingPoolPut(pool); err != nil {
		return err
	}
	custody := Custody(id)
	if err := p.token.TransferFrom(custody, funder, custody, amount); err != nil {
		_ = p.state.StakingPoolPut(prev)
		return fmt.Errorf("staking: fund transfer: %w", err)
	}
	p.emit(FundedEvent(id, funder, amount, pool.RewardPool))
	return nil
}

// RewardPool returns the funds not yet promised to a position.
func (p *Pool) RewardPool(id [32]byte) (*big.Int, error) {
	pool, err := p.load(id)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(pool.RewardPool), nil
}

// Reserved returns the gifts owed to unreleased positions.
func (p *Pool) Reserved(id [32]byte) (*big.Int, error) {
	pool, err := p.load(id)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(pool.Reserved), nil
}

// Join locks amount for the pool term. The gift is fixed by the matching tier
// and reserved from the reward pool immediately.
func (p *Pool) Join(id [32]byte, depositor [20]byte, amount *big.Int) (*Position, error) {
	pool, err := p.load(id)
	if err != nil {
		return nil, err
	}
	if depositor == ([20]byte{}) {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrUnsuitableAmount
	}
	tier, ok := Match(pool.Tiers, amount)
	if !ok {
		return nil, ErrUnsuitableAmount
	}
	existing, exists, err := p.position(id, depositor)
	if err != nil {
		return nil, err
	}
	if exists && !existing.Released {
		return nil, ErrStakerExists
	}
	gift := tier.Gift(amount)
	if gift.Cmp(cloneBigInt(pool.RewardPool)) > 0 {
		return nil, ErrInsufficientPool
	}
	if p.token == nil {
		return nil, errNilToken
	}

	now := p.now()
	pos := &Position{
		Depositor:          depositor,
		Principal:          new(big.Int).Set(amount),
		Gift:               gift,
		Tier:               tier.Name,
		NoAds:              tier.NoAds,
		ExclusiveAdvantage: tier.ExclusiveAdvantage,
		JoinedAt:           now,
		UnlockDate:         now + pool.LockDuration,
	}
	prevPool := pool.Clone()
	pool.RewardPool = new(big.Int).Sub(pool.RewardPool, gift)
	pool.Reserved = new(big.Int).Add(cloneBigInt(pool.Reserved), gift)
	if err := p.state.StakingPoolPut(pool); err != nil {
		return nil, err
	}
	if err := p.state.StakingPositionPut(id, pos); err != nil {
		_ = p.state.StakingPoolPut(prevPool)
		return nil, err
	}
	custody := Custody(id)
	if err := p.token.TransferFrom(custody, depositor, custody, amount); err != nil {
		_ = p.state.StakingPoolPut(prevPool)
		p.restorePosition(id, depositor, existing, exists)
		return nil, fmt.Errorf("staking: join transfer: %w", err)
	}
	p.emit(JoinedEvent(id, pos))
	return pos.Clone(), nil
}

func (p *Pool) restorePosition(id [32]byte, who [20]byte, prev *Position, existed bool) {
	if existed {
		_ = p.state.StakingPositionPut(id, prev)
		return
	}
	_ = p.state.StakingPositionDelete(id, who)
}

// Release pays principal plus gift once the unlock date has passed.
func (p *Pool) Release(id [32]byte, depositor [20]byte) (*big.Int, error) {
	pool, err := p.load(id)
	if err != nil {
		return nil, err
	}
	pos, exists, err := p.position(id, depositor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStakerNotFound
	}
	if p.now() <= pos.UnlockDate {
		return nil, ErrNotReleasable
	}
	if pos.Released {
		return nil, ErrAlreadyReleased
	}
	if cloneBigInt(pool.Reserved).Cmp(cloneBigInt(pos.Gift)) < 0 {
		return nil, ErrReservedUnderflow
	}
	if p.token == nil {
		return nil, errNilToken
	}

	prevPool := pool.Clone()
	prevPos := pos.Clone()
	payout := pos.Payout()
	pos.Released = true
	pool.Reserved = new(big.Int).Sub(pool.Reserved, pos.Gift)
	if err := p.state.StakingPositionPut(id, pos); err != nil {
		return nil, err
	}
	if err := p.state.StakingPoolPut(pool); err != nil {
		_ = p.state.StakingPositionPut(id, prevPos)
		return nil, err
	}
	if err := p.token.Transfer(Custody(id), depositor, payout); err != nil {
		_ = p.state.StakingPositionPut(id, prevPos)
		_ = p.state.StakingPoolPut(prevPool)
		return nil, fmt.Errorf("staking: release transfer: %w", err)
	}
	p.emit(ReleasedEvent(id, pos))
	return payout, nil
}

// Position returns a copy of the depositor's position.
func (p *Pool) Position(id [32]byte, who [20]byte) (*Position, error) {
	if _, err := p.load(id); err != nil {
		return nil, err
	}
	pos, exists, err := p.position(id, who)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStakerNotFound
	}
	return pos.Clone(), nil
}

// Exists reports whether who has ever held a position in the pool.
func (p *Pool) Exists(id [32]byte, who [20]byte) (bool, error) {
	if _, err := p.load(id); err != nil {
		return false, err
	}
	_, exists, err := p.position(id, who)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Releasable returns principal plus gift until the position is released and
// zero afterwards. It does not consider the unlock date.
func (p *Pool) Releasable(id [32]byte, who [20]byte) (*big.Int, error) {
	pos, err := p.Position(id, who)
	if err != nil {
		return nil, err
	}
	if pos.Released {
		return big.NewInt(0), nil
	}
	return pos.Payout(), nil
}
