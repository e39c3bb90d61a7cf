package metrics

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerMetrics(t *testing.T) {
	m := Ledger()
	if Ledger() != m {
		t.Fatalf("expected singleton registry")
	}
	m.RecordVesting("0xaa", big.NewInt(1_200_000), big.NewInt(4_000))
	if got := testutil.ToFloat64(m.committed.WithLabelValues("0xaa")); got != 1_200_000 {
		t.Fatalf("unexpected committed gauge %v", got)
	}
	if got := testutil.ToFloat64(m.released.WithLabelValues("0xaa")); got != 4_000 {
		t.Fatalf("unexpected released gauge %v", got)
	}
	m.RecordPool("0xbb", big.NewInt(209_500), big.NewInt(290_500))
	if got := testutil.ToFloat64(m.reserved.WithLabelValues("0xbb")); got != 290_500 {
		t.Fatalf("unexpected reserved gauge %v", got)
	}
	before := testutil.ToFloat64(m.payouts.WithLabelValues("staking"))
	m.RecordPayout("staking")
	if got := testutil.ToFloat64(m.payouts.WithLabelValues("staking")); got != before+1 {
		t.Fatalf("expected payout counter to increase, got %v", got)
	}
	var nilMetrics *LedgerMetrics
	nilMetrics.RecordPayout("vesting")
}

func TestBigToFloat(t *testing.T) {
	if bigToFloat(nil) != 0 {
		t.Fatalf("nil must convert to zero")
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 2000)
	if got := bigToFloat(huge); got != 0 {
		t.Fatalf("expected overflow to clamp to zero, got %v", got)
	}
}
