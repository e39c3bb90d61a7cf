package core

import (
	"context"
	"math/big"
)

// Mint creates amount new tokens for to within the supply cap.
func (n *Node) Mint(ctx context.Context, to [20]byte, amount *big.Int) error {
	return n.mutate(ctx, moduleToken, "mint", func(tx *txn) error {
		return tx.token.Mint(to, amount)
	})
}

// Transfer moves tokens between accounts, including funding a custody
// account ahead of SetLive or a single vesting.
func (n *Node) Transfer(ctx context.Context, from, to [20]byte, amount *big.Int) error {
	return n.mutate(ctx, moduleToken, "transfer", func(tx *txn) error {
		return tx.token.Transfer(from, to, amount)
	})
}

// Approve sets the amount spender may move from owner.
func (n *Node) Approve(ctx context.Context, owner, spender [20]byte, amount *big.Int) error {
	return n.mutate(ctx, moduleToken, "approve", func(tx *txn) error {
		return tx.token.Approve(owner, spender, amount)
	})
}

// BalanceOf returns the token balance of addr.
func (n *Node) BalanceOf(ctx context.Context, addr [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.read(ctx, moduleToken, "balance", func(tx *txn) error {
		var err error
		out, err = tx.token.BalanceOf(addr)
		return err
	})
	return out, err
}

// TotalSupply returns the tokens minted so far.
func (n *Node) TotalSupply(ctx context.Context) (*big.Int, error) {
	var out *big.Int
	err := n.read(ctx, moduleToken, "supply", func(tx *txn) error {
		var err error
		out, err = tx.token.TotalSupply()
		return err
	})
	return out, err
}
