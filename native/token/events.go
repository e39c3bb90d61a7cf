package token

import (
	"math/big"

	"yonledger/core/events"
)

const (
	EventTypeTransfer = "token.transfer"
	EventTypeMint     = "token.mint"
	EventTypeApproval = "token.approval"
)

// TransferEvent returns the payload emitted for a balance movement.
func TransferEvent(symbol string, from, to [20]byte, amount *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeTransfer,
		Attributes: map[string]string{
			"token":  symbol,
			"from":   events.FormatAddress(from),
			"to":     events.FormatAddress(to),
			"amount": events.FormatAmount(amount),
		},
	}
}

// MintEvent returns the payload emitted when supply is created.
func MintEvent(symbol string, to [20]byte, amount *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeMint,
		Attributes: map[string]string{
			"token":  symbol,
			"to":     events.FormatAddress(to),
			"amount": events.FormatAmount(amount),
		},
	}
}

// ApprovalEvent returns the payload emitted when an allowance changes.
func ApprovalEvent(symbol string, owner, spender [20]byte, amount *big.Int) *events.Record {
	return &events.Record{
		Type: EventTypeApproval,
		Attributes: map[string]string{
			"token":   symbol,
			"owner":   events.FormatAddress(owner),
			"spender": events.FormatAddress(spender),
			"amount":  events.FormatAmount(amount),
		},
	}
}
