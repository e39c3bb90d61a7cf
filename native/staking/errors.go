package staking

import (
	"errors"

	"yonledger/native/common"
)

const moduleName = "staking"

var (
	errNilState = errors.New("staking engine: state not configured")
	errNilToken = errors.New("staking engine: token not configured")

	ErrPoolExists           = common.Precondition(moduleName, "pool already exists")
	ErrPoolNotFound         = common.Precondition(moduleName, "pool not found")
	ErrInvalidLock          = common.Precondition(moduleName, "lock duration must be positive")
	ErrInvalidTiers         = common.Precondition(moduleName, "invalid tier table")
	ErrInvalidAmount        = common.Precondition(moduleName, "amount must be greater than 0")
	ErrZeroAddress          = common.Precondition(moduleName, "depositor is the zero address")
	ErrUnsuitableAmount     = common.Precondition(moduleName, "amount is unsuitable")
	ErrStakerExists         = common.Precondition(moduleName, "stacker already exist")
	ErrInsufficientPool     = common.Invariant(moduleName, "no enough tokens available for gift")
	ErrStakerNotFound       = common.Precondition(moduleName, "stacker not exist")
	ErrNotReleasable        = common.Precondition(moduleName, "tokens are not releasable for now")
	ErrAlreadyReleased      = common.Precondition(moduleName, "stacker has already released these TOKENs")
	ErrReservedUnderflow    = common.Invariant(moduleName, "reserved gifts below position gift")
	ErrRewardPoolOverflowed = common.Invariant(moduleName, "reward pool exceeds uint256 range")
)
