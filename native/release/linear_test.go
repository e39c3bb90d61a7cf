package release

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func mustSchedule(t *testing.T, start, duration int64) Schedule {
	t.Helper()
	s, err := NewSchedule(start, duration)
	if err != nil {
		t.Fatalf("new schedule: %v", err)
	}
	return s
}

func vested(t *testing.T, s Schedule, amount *big.Int, now int64) *big.Int {
	t.Helper()
	v, err := s.Vested(amount, now)
	if err != nil {
		t.Fatalf("vested at %d: %v", now, err)
	}
	return v
}

func TestVestedBoundaries(t *testing.T) {
	amount := big.NewInt(1_200_000)
	s := mustSchedule(t, 1_000, 300)

	if got := vested(t, s, amount, s.Start-1); got.Sign() != 0 {
		t.Fatalf("expected nothing vested before start, got %s", got)
	}
	if got := vested(t, s, amount, s.Start); got.Sign() != 0 {
		t.Fatalf("expected nothing vested at start, got %s", got)
	}
	if got := vested(t, s, amount, s.Start+1); got.Cmp(big.NewInt(4_000)) != 0 {
		t.Fatalf("expected 4000 vested one second after start, got %s", got)
	}
	if got := vested(t, s, amount, s.End()); got.Cmp(amount) != 0 {
		t.Fatalf("expected full amount at end, got %s", got)
	}
	if got := vested(t, s, amount, s.End()+86_400); got.Cmp(amount) != 0 {
		t.Fatalf("expected full amount after end, got %s", got)
	}
}

func TestVestedPlusLockedIsAmountAndMonotonic(t *testing.T) {
	amount := big.NewInt(10_000)
	s := mustSchedule(t, 0, 150*SecondsPerDay)

	prev := big.NewInt(0)
	for now := int64(-SecondsPerDay); now <= s.End()+SecondsPerDay; now += 3_917 {
		v := vested(t, s, amount, now)
		locked, err := s.Locked(amount, now)
		if err != nil {
			t.Fatalf("locked: %v", err)
		}
		if sum := new(big.Int).Add(v, locked); sum.Cmp(amount) != 0 {
			t.Fatalf("vested+locked=%s at %d, want %s", sum, now, amount)
		}
		if v.Cmp(prev) < 0 {
			t.Fatalf("vested decreased at %d: %s < %s", now, v, prev)
		}
		prev = v
	}
}

func TestVestedRoundsDown(t *testing.T) {
	amount := big.NewInt(10_000)
	s := mustSchedule(t, 0, 150*SecondsPerDay)

	if got := vested(t, s, amount, SecondsPerDay); got.Cmp(big.NewInt(66)) != 0 {
		t.Fatalf("expected 66 after one day, got %s", got)
	}
	if got := vested(t, s, amount, 2*SecondsPerDay); got.Cmp(big.NewInt(133)) != 0 {
		t.Fatalf("expected 133 after two days, got %s", got)
	}
	if got := vested(t, s, amount, 50*SecondsPerDay); got.Cmp(big.NewInt(3_333)) != 0 {
		t.Fatalf("expected 3333 after fifty days, got %s", got)
	}
}

func TestVestedHandlesFullUint256Range(t *testing.T) {
	maxUint := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	s := mustSchedule(t, 0, 4)

	got := vested(t, s, maxUint, 2)
	want := new(big.Int).Rsh(maxUint, 1)
	if got.Cmp(want) != 0 {
		t.Fatalf("expected %s, got %s", want, got)
	}

	tooLarge := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, err := s.Vested(tooLarge, 2); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected overflow error, got %v", err)
	}
	if _, err := s.Vested(big.NewInt(-1), 2); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount error, got %v", err)
	}
}

func TestReleasable(t *testing.T) {
	s := mustSchedule(t, 0, 100)
	amount := big.NewInt(1_000)

	got, err := s.Releasable(amount, big.NewInt(200), 50)
	if err != nil {
		t.Fatalf("releasable: %v", err)
	}
	if got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected 300 releasable, got %s", got)
	}
	got, err = s.Releasable(amount, big.NewInt(600), 50)
	if err != nil {
		t.Fatalf("releasable: %v", err)
	}
	if got.Sign() != 0 {
		t.Fatalf("expected releasable floored at zero, got %s", got)
	}
}

func TestScheduleValidation(t *testing.T) {
	if _, err := NewSchedule(10, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected invalid duration, got %v", err)
	}
	bounds := DefaultBounds()
	cases := []struct {
		name     string
		delay    int64
		duration int64
		ok       bool
	}{
		{name: "zero delay", delay: 0, duration: SecondsPerDay, ok: true},
		{name: "negative delay", delay: -1, duration: SecondsPerDay},
		{name: "delay past bound", delay: 3651 * SecondsPerDay, duration: SecondsPerDay},
		{name: "zero duration", delay: 10, duration: 0},
		{name: "duration past bound", delay: 10, duration: 3651 * SecondsPerDay},
		{name: "max bounds", delay: 3650 * SecondsPerDay, duration: 3650 * SecondsPerDay, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := FromDelay(1_000, tc.delay, tc.duration, bounds)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.Start != 1_000+tc.delay || s.Duration != tc.duration {
					t.Fatalf("unexpected schedule %+v", s)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestScheduleEndMustFitInt64(t *testing.T) {
	if _, err := NewSchedule(math.MaxInt64-10, 100); !errors.Is(err, ErrScheduleOverflow) {
		t.Fatalf("expected overflowing end to fail, got %v", err)
	}
	s := mustSchedule(t, math.MaxInt64-100, 100)
	if s.End() != math.MaxInt64 {
		t.Fatalf("unexpected end %d", s.End())
	}
	if got := vested(t, s, big.NewInt(1_000), s.Start+1); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected 10 vested one second in, got %s", got)
	}
	if _, err := FromDelay(math.MaxInt64-5, 10, 100, DefaultBounds()); !errors.Is(err, ErrScheduleOverflow) {
		t.Fatalf("expected overflowing delay to fail, got %v", err)
	}
	bad := Schedule{Start: math.MaxInt64 - 4, Duration: 100}
	if _, err := bad.Vested(big.NewInt(1_000), bad.Start+1); !errors.Is(err, ErrScheduleOverflow) {
		t.Fatalf("expected unvalidated schedule to be rejected, got %v", err)
	}
}
