package token

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"yonledger/core/events"
)

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func TestLedgerMintAndTransfer(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(), "yon", nil)
	emitter := &capturingEmitter{}
	ledger.SetEmitter(emitter)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)

	if err := ledger.Mint(alice, big.NewInt(1_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Transfer(alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceBal, _ := ledger.BalanceOf(alice)
	bobBal, _ := ledger.BalanceOf(bob)
	if aliceBal.Cmp(big.NewInt(600)) != 0 || bobBal.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("unexpected balances alice=%s bob=%s", aliceBal, bobBal)
	}
	supply, _ := ledger.TotalSupply()
	if supply.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("unexpected supply %s", supply)
	}
	if len(emitter.events) != 2 {
		t.Fatalf("expected two events, got %d", len(emitter.events))
	}
	rec := events.RecordOf(emitter.events[1])
	if rec == nil || rec.Type != EventTypeTransfer || rec.Attributes["amount"] != "400" || rec.Attributes["token"] != "YON" {
		t.Fatalf("unexpected transfer event %+v", rec)
	}
}

func TestLedgerTransferFailures(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(), "YON", nil)
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)
	if err := ledger.Mint(alice, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Transfer(alice, bob, big.NewInt(11)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Transfer(alice, [20]byte{}, big.NewInt(1)); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected zero address, got %v", err)
	}
	if err := ledger.Transfer(alice, bob, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	balance, _ := ledger.BalanceOf(alice)
	if balance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("failed transfers must not move funds, got %s", balance)
	}
}

func TestLedgerTransferFromConsumesAllowance(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(), "YON", nil)
	owner := newTestAddress(0x01)
	spender := newTestAddress(0x02)
	sink := newTestAddress(0x03)
	if err := ledger.Mint(owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.TransferFrom(spender, owner, sink, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllow) {
		t.Fatalf("expected allowance error, got %v", err)
	}
	if err := ledger.Approve(owner, spender, big.NewInt(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.TransferFrom(spender, owner, sink, big.NewInt(50)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}
	allowance, _ := ledger.Allowance(owner, spender)
	if allowance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected remaining allowance 10, got %s", allowance)
	}
	sinkBal, _ := ledger.BalanceOf(sink)
	if sinkBal.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("unexpected sink balance %s", sinkBal)
	}
}

func TestLedgerCapAndRange(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(), "YON", big.NewInt(1_000))
	holder := newTestAddress(0x01)
	if err := ledger.Mint(holder, big.NewInt(1_000)); err != nil {
		t.Fatalf("mint up to cap: %v", err)
	}
	if err := ledger.Mint(holder, big.NewInt(1)); !errors.Is(err, ErrCapExceeded) {
		t.Fatalf("expected cap error, got %v", err)
	}

	uncapped := NewLedger(NewMemoryStore(), "YON", nil)
	tooLarge := new(big.Int).Lsh(big.NewInt(1), 256)
	if err := uncapped.Mint(holder, tooLarge); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	maxUint := new(big.Int).Sub(tooLarge, big.NewInt(1))
	if err := uncapped.Mint(holder, maxUint); err != nil {
		t.Fatalf("mint max: %v", err)
	}
	if err := uncapped.Mint(newTestAddress(0x02), big.NewInt(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected supply overflow, got %v", err)
	}
}
