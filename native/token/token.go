package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/holiman/uint256"

	"yonledger/core/events"
)

// Token is the capability the vesting and staking engines use to move funds.
// The from argument of Transfer is the account whose balance is debited; an
// engine passes its own custody address.
type Token interface {
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, from, to [20]byte, amount *big.Int) error
	BalanceOf(addr [20]byte) (*big.Int, error)
	Mint(to [20]byte, amount *big.Int) error
}

var (
	errNilStore = errors.New("token: store not configured")

	ErrInvalidAmount       = errors.New("token: amount must not be negative")
	ErrZeroAddress         = errors.New("token: zero address")
	ErrInsufficientBalance = errors.New("token: transfer amount exceeds balance")
	ErrInsufficientAllow   = errors.New("token: insufficient allowance")
	ErrCapExceeded         = errors.New("token: cap exceeded")
	ErrOverflow            = errors.New("token: amount exceeds uint256 range")
)

// Store persists balances, allowances and the total supply.
type Store interface {
	TokenBalance(addr [20]byte) (*big.Int, error)
	SetTokenBalance(addr [20]byte, amount *big.Int) error
	TokenAllowance(owner, spender [20]byte) (*big.Int, error)
	SetTokenAllowance(owner, spender [20]byte, amount *big.Int) error
	TokenSupply() (*big.Int, error)
	SetTokenSupply(amount *big.Int) error
}

// Ledger is the reference fungible token used as custody backend. It keeps
// every balance inside the uint256 range and optionally enforces a supply
// cap.
type Ledger struct {
	store   Store
	symbol  string
	cap     *big.Int
	emitter events.Emitter
}

// NewLedger constructs a token ledger. A nil or zero cap disables the cap.
func NewLedger(store Store, symbol string, cap *big.Int) *Ledger {
	l := &Ledger{
		store:   store,
		symbol:  strings.ToUpper(strings.TrimSpace(symbol)),
		emitter: events.NoopEmitter{},
	}
	if cap != nil && cap.Sign() > 0 {
		l.cap = new(big.Int).Set(cap)
	}
	return l
}

// SetEmitter configures the event emitter used by the ledger.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// Symbol returns the ticker of the token.
func (l *Ledger) Symbol() string { return l.symbol }

// Cap returns the configured supply cap or nil when uncapped.
func (l *Ledger) Cap() *big.Int {
	if l.cap == nil {
		return nil
	}
	return new(big.Int).Set(l.cap)
}

func (l *Ledger) emit(rec *events.Record) {
	if l == nil || l.emitter == nil || rec == nil {
		return
	}
	l.emitter.Emit(events.Wrap(rec))
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return ErrOverflow
	}
	return nil
}

func addChecked(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if _, overflow := uint256.FromBig(sum); overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// BalanceOf returns the balance held by addr.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilStore
	}
	balance, err := l.store.TokenBalance(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(zeroIfNil(balance)), nil
}

// TotalSupply returns the minted supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilStore
	}
	supply, err := l.store.TokenSupply()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(zeroIfNil(supply)), nil
}

// Allowance returns the amount spender may move out of owner's balance.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilStore
	}
	allowance, err := l.store.TokenAllowance(owner, spender)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(zeroIfNil(allowance)), nil
}

// Mint credits amount to the recipient and grows the supply.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilStore
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	nextSupply, err := addChecked(supply, amount)
	if err != nil {
		return err
	}
	if l.cap != nil && nextSupply.Cmp(l.cap) > 0 {
		return ErrCapExceeded
	}
	balance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	nextBalance, err := addChecked(balance, amount)
	if err != nil {
		return err
	}
	if err := l.store.SetTokenSupply(nextSupply); err != nil {
		return err
	}
	if err := l.store.SetTokenBalance(to, nextBalance); err != nil {
		return err
	}
	l.emit(MintEvent(l.symbol, to, amount))
	return nil
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilStore
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if from == ([20]byte{}) || to == ([20]byte{}) {
		return ErrZeroAddress
	}
	fromBalance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to || amount.Sign() == 0 {
		l.emit(TransferEvent(l.symbol, from, to, amount))
		return nil
	}
	toBalance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	nextTo, err := addChecked(toBalance, amount)
	if err != nil {
		return err
	}
	if err := l.store.SetTokenBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := l.store.SetTokenBalance(to, nextTo); err != nil {
		return fmt.Errorf("token: credit recipient: %w", err)
	}
	l.emit(TransferEvent(l.symbol, from, to, amount))
	return nil
}

// Approve sets the allowance spender may draw from owner.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilStore
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if owner == ([20]byte{}) || spender == ([20]byte{}) {
		return ErrZeroAddress
	}
	if err := l.store.SetTokenAllowance(owner, spender, new(big.Int).Set(amount)); err != nil {
		return err
	}
	l.emit(ApprovalEvent(l.symbol, owner, spender, amount))
	return nil
}

// TransferFrom moves amount from one account to another using the allowance
// granted to spender.
func (l *Ledger) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilStore
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllow
	}
	if err := l.Transfer(from, to, amount); err != nil {
		return err
	}
	return l.store.SetTokenAllowance(from, spender, new(big.Int).Sub(allowance, amount))
}

type allowanceKey struct {
	owner   [20]byte
	spender [20]byte
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu         sync.RWMutex
	balances   map[[20]byte]*big.Int
	allowances map[allowanceKey]*big.Int
	supply     *big.Int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
		supply:     big.NewInt(0),
	}
}

func (m *MemoryStore) TokenBalance(addr [20]byte) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if balance, ok := m.balances[addr]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

func (m *MemoryStore) SetTokenBalance(addr [20]byte, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[addr] = new(big.Int).Set(zeroIfNil(amount))
	return nil
}

func (m *MemoryStore) TokenAllowance(owner, spender [20]byte) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if allowance, ok := m.allowances[allowanceKey{owner, spender}]; ok {
		return new(big.Int).Set(allowance), nil
	}
	return big.NewInt(0), nil
}

func (m *MemoryStore) SetTokenAllowance(owner, spender [20]byte, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[allowanceKey{owner, spender}] = new(big.Int).Set(zeroIfNil(amount))
	return nil
}

func (m *MemoryStore) TokenSupply() (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.supply), nil
}

func (m *MemoryStore) SetTokenSupply(amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supply = new(big.Int).Set(zeroIfNil(amount))
	return nil
}
