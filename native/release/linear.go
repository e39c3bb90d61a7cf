package release

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// SecondsPerDay converts day-denominated bounds into schedule seconds.
const SecondsPerDay int64 = 24 * 60 * 60

var (
	ErrInvalidDuration  = errors.New("release: duration must be positive")
	ErrNegativeAmount   = errors.New("release: amount must not be negative")
	ErrAmountOverflow   = errors.New("release: amount exceeds uint256 range")
	ErrScheduleOverflow = errors.New("release: schedule end exceeds int64 range")
)

// Bounds restricts the delay and duration accepted when a schedule is derived
// from a creation time.
type Bounds struct {
	MaxDelay    int64
	MaxDuration int64
}

// DefaultBounds accepts delays and durations of up to 3650 days.
func DefaultBounds() Bounds {
	return Bounds{MaxDelay: 3650 * SecondsPerDay, MaxDuration: 3650 * SecondsPerDay}
}

// Schedule is a linear release window. Nothing vests before Start and the
// full amount is vested from Start+Duration onwards.
type Schedule struct {
	Start    int64
	Duration int64
}

// NewSchedule validates and returns a schedule.
func NewSchedule(start, duration int64) (Schedule, error) {
	s := Schedule{Start: start, Duration: duration}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// FromDelay builds a schedule starting delay seconds after created.
func FromDelay(created, delay, duration int64, bounds Bounds) (Schedule, error) {
	if delay < 0 || (bounds.MaxDelay > 0 && delay > bounds.MaxDelay) {
		return Schedule{}, fmt.Errorf("release: delay must be between 0 and %d seconds", bounds.MaxDelay)
	}
	if duration <= 0 || (bounds.MaxDuration > 0 && duration > bounds.MaxDuration) {
		return Schedule{}, fmt.Errorf("release: duration must be between 1 and %d seconds", bounds.MaxDuration)
	}
	if created > math.MaxInt64-delay {
		return Schedule{}, ErrScheduleOverflow
	}
	return NewSchedule(created+delay, duration)
}

// Validate checks the schedule invariants.
func (s Schedule) Validate() error {
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if s.Start > math.MaxInt64-s.Duration {
		return ErrScheduleOverflow
	}
	return nil
}

// End returns the first timestamp at which the full amount is vested.
func (s Schedule) End() int64 {
	return s.Start + s.Duration
}

// Vested returns the portion of amount accrued at now, rounded down.
func (s Schedule) Vested(amount *big.Int, now int64) (*big.Int, error) {
	total, err := toUint256(amount)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if now <= s.Start || total.IsZero() {
		return big.NewInt(0), nil
	}
	if now >= s.End() {
		return total.ToBig(), nil
	}
	elapsed := uint256.NewInt(uint64(now - s.Start))
	duration := uint256.NewInt(uint64(s.Duration))
	// elapsed < duration so the quotient always fits; the product may not.
	vested, overflow := new(uint256.Int).MulDivOverflow(total, elapsed, duration)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return vested.ToBig(), nil
}

// Locked returns amount minus the vested portion at now.
func (s Schedule) Locked(amount *big.Int, now int64) (*big.Int, error) {
	if amount == nil {
		amount = big.NewInt(0)
	}
	vested, err := s.Vested(amount, now)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(amount, vested), nil
}

// Releasable returns the vested portion minus what has already been released,
// floored at zero.
func (s Schedule) Releasable(amount, released *big.Int, now int64) (*big.Int, error) {
	vested, err := s.Vested(amount, now)
	if err != nil {
		return nil, err
	}
	return Remaining(vested, released), nil
}

// Remaining returns ceiling minus released, floored at zero.
func Remaining(ceiling, released *big.Int) *big.Int {
	out := new(big.Int)
	if ceiling != nil {
		out.Set(ceiling)
	}
	if released != nil {
		out.Sub(out, released)
	}
	if out.Sign() < 0 {
		return big.NewInt(0)
	}
	return out
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return new(uint256.Int), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return value, nil
}

// CheckAmount validates that amount is non-negative and fits in uint256.
func CheckAmount(amount *big.Int) error {
	_, err := toUint256(amount)
	return err
}
