package state

import (
	"fmt"
	"math/big"
)

func tokenBalanceKey(addr [20]byte) []byte {
	return joinKey(tokenBalancePrefix, addr[:])
}

func tokenAllowanceKey(owner, spender [20]byte) []byte {
	return joinKey(tokenAllowancePrefix, owner[:], spender[:])
}

func (m *Manager) getAmount(key []byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := m.KVGet(key, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

func (m *Manager) putAmount(key []byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("negative balance not allowed")
	}
	if amount.Sign() == 0 {
		return m.KVDelete(key)
	}
	return m.KVPut(key, amount)
}

// TokenBalance returns the token balance of addr.
func (m *Manager) TokenBalance(addr [20]byte) (*big.Int, error) {
	return m.getAmount(tokenBalanceKey(addr))
}

// SetTokenBalance stores the token balance of addr.
func (m *Manager) SetTokenBalance(addr [20]byte, amount *big.Int) error {
	return m.putAmount(tokenBalanceKey(addr), amount)
}

// TokenAllowance returns the amount spender may draw from owner.
func (m *Manager) TokenAllowance(owner, spender [20]byte) (*big.Int, error) {
	return m.getAmount(tokenAllowanceKey(owner, spender))
}

// SetTokenAllowance stores the amount spender may draw from owner.
func (m *Manager) SetTokenAllowance(owner, spender [20]byte, amount *big.Int) error {
	return m.putAmount(tokenAllowanceKey(owner, spender), amount)
}

// TokenSupply returns the minted supply.
func (m *Manager) TokenSupply() (*big.Int, error) {
	return m.getAmount(tokenSupplyKeyBytes)
}

// SetTokenSupply stores the minted supply.
func (m *Manager) SetTokenSupply(amount *big.Int) error {
	return m.putAmount(tokenSupplyKeyBytes, amount)
}
