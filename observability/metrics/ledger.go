package metrics

import (
	"math"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics exposes the balances tracked by the vesting and staking
// engines. Instances are labelled with their hex id.
type LedgerMetrics struct {
	committed  *prometheus.GaugeVec
	released   *prometheus.GaugeVec
	rewardPool *prometheus.GaugeVec
	reserved   *prometheus.GaugeVec
	payouts    *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the singleton ledger metrics registry.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			committed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "yon_vesting_committed",
				Help: "Total amount committed to the beneficiaries of a vesting ledger.",
			}, []string{"instance"}),
			released: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "yon_vesting_released",
				Help: "Total amount released by a vesting ledger.",
			}, []string{"instance"}),
			rewardPool: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "yon_staking_reward_pool",
				Help: "Unreserved reward funds of a staking pool.",
			}, []string{"instance"}),
			reserved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "yon_staking_reserved",
				Help: "Gifts owed to unreleased positions of a staking pool.",
			}, []string{"instance"}),
			payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "yon_payouts_total",
				Help: "Count of successful releases by module.",
			}, []string{"module"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.committed,
			ledgerRegistry.released,
			ledgerRegistry.rewardPool,
			ledgerRegistry.reserved,
			ledgerRegistry.payouts,
		)
	})
	return ledgerRegistry
}

// RecordVesting updates the committed and released gauges of a ledger.
func (m *LedgerMetrics) RecordVesting(instance string, committed, released *big.Int) {
	if m == nil {
		return
	}
	m.committed.WithLabelValues(instance).Set(bigToFloat(committed))
	m.released.WithLabelValues(instance).Set(bigToFloat(released))
}

// RecordPool updates the reward pool and reserved gauges of a staking pool.
func (m *LedgerMetrics) RecordPool(instance string, rewardPool, reserved *big.Int) {
	if m == nil {
		return
	}
	m.rewardPool.WithLabelValues(instance).Set(bigToFloat(rewardPool))
	m.reserved.WithLabelValues(instance).Set(bigToFloat(reserved))
}

// RecordPayout counts a successful release.
func (m *LedgerMetrics) RecordPayout(module string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	m.payouts.WithLabelValues(module).Inc()
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, acc := new(big.Float).SetInt(value).Float64()
	if acc != big.Exact {
		// Guard against NaN/Inf when conversion fails.
		if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
			return 0
		}
	}
	return floatVal
}
