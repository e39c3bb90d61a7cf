package vesting

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"yonledger/core/events"
)

const (
	EventTypeAppended = "vesting.appended"
	EventTypeRemoved  = "vesting.removed"
	EventTypeLive     = "vesting.live"
	EventTypeReleased = "vesting.released"
	EventTypeRevoked  = "vesting.revoked"
)

func formatID(id [32]byte) string { return "0x" + hex.EncodeToString(id[:]) }

// AppendedEvent is emitted when a beneficiary joins a ledger in setup mode.
func AppendedEvent(id [32]byte, who [20]byte, amount *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeAppended,
		Attributes: map[string]string{
			"id":          formatID(id),
			"beneficiary": events.FormatAddress(who),
			"amount":      events.FormatAmount(amount),
		},
	}
}

// RemovedEvent is emitted when a beneficiary leaves a ledger in setup mode.
func RemovedEvent(id [32]byte, who [20]byte, amount *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeRemoved,
		Attributes: map[string]string{
			"id":          formatID(id),
			"beneficiary": events.FormatAddress(who),
			"amount":      events.FormatAmount(amount),
		},
	}
}

// LiveEvent is emitted once when a ledger switches to live mode.
func LiveEvent(id [32]byte, activator [20]byte, committed *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeLive,
		Attributes: map[string]string{
			"id":        formatID(id),
			"activator": events.FormatAddress(activator),
			"committed": events.FormatAmount(committed),
		},
	}
}

// ReleasedEvent is emitted for every successful release of ledger or single
// vesting funds.
func ReleasedEvent(id [32]byte, kind string, who [20]byte, amount, released *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeReleased,
		Attributes: map[string]string{
			"id":          formatID(id),
			"kind":        kind,
			"beneficiary": events.FormatAddress(who),
			"amount":      events.FormatAmount(amount),
			"released":    events.FormatAmount(released),
		},
	}
}

// RevokedEvent is emitted when a revocable single vesting is terminated.
func RevokedEvent(id [32]byte, revoker [20]byte, ceiling, unvested *big.Int, at int64) *events.Record {
	return &events.Record{
		Type: EventTypeRevoked,
		Attributes: map[string]string{
			"id":       formatID(id),
			"revoker":  events.FormatAddress(revoker),
			"vested":   events.FormatAmount(ceiling),
			"unvested": events.FormatAmount(unvested),
			"at":       strconv.FormatInt(at, 10),
		},
	}
}
