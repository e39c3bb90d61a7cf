package staking

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"yonledger/core/events"
)

const (
	EventTypeFunded   = "staking.funded"
	EventTypeJoined   = "staking.joined"
	EventTypeReleased = "staking.released"
)

func formatID(id [32]byte) string { return "0x" + hex.EncodeToString(id[:]) }

// FundedEvent is emitted when the reward pool grows.
func FundedEvent(id [32]byte, funder [20]byte, amount, pool *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeFunded,
		Attributes: map[string]string{
			"id":     formatID(id),
			"funder": events.FormatAddress(funder),
			"amount": events.FormatAmount(amount),
			"pool":   events.FormatAmount(pool),
		},
	}
}

// JoinedEvent is emitted when a depositor locks principal.
func JoinedEvent(id [32]byte, pos *Position) *events.Record {
	return &events.Record{
		Type: EventTypeJoined,
		Attributes: map[string]string{
			"id":         formatID(id),
			"depositor":  events.FormatAddress(pos.Depositor),
			"principal":  events.FormatAmount(pos.Principal),
			"gift":       events.FormatAmount(pos.Gift),
			"tier":       pos.Tier,
			"unlockDate": strconv.FormatInt(pos.UnlockDate, 10),
		},
	}
}

// ReleasedEvent is emitted when a matured position is paid out.
func ReleasedEvent(id [32]byte, pos *Position) *events.Record {
	return &events.Record{
		Type: EventTypeReleased,
		Attributes: map[string]string{
			"id":        formatID(id),
			"depositor": events.FormatAddress(pos.Depositor),
			"amount":    events.FormatAmount(pos.Payout()),
		},
	}
}
