package vesting

import (
	"errors"

	"yonledger/native/common"
)

const moduleName = "vesting"

var (
	errNilState = errors.New("vesting engine: state not configured")
	errNilToken = errors.New("vesting engine: token not configured")

	ErrLedgerExists        = common.Precondition(moduleName, "vesting already exists")
	ErrLedgerNotFound      = common.Precondition(moduleName, "vesting not found")
	ErrZeroBeneficiary     = common.Precondition(moduleName, "beneficiary is the zero address")
	ErrInvalidAmount       = common.Precondition(moduleName, "amount must be greater than 0")
	ErrAppendFailed        = common.Precondition(moduleName, "append beneficiary failed")
	ErrRemoveFailed        = common.Precondition(moduleName, "remove beneficiary failed")
	ErrAlreadyLive         = common.Precondition(moduleName, "already live")
	ErrNotSetup            = common.Precondition(moduleName, "contract must be in setup mode")
	ErrNotLive             = common.Precondition(moduleName, "contract must be in live mode")
	ErrInitiatorsRemain    = common.Precondition(moduleName, "before activate the contract all INITIATOR_ROLE must be revoked")
	ErrCustodyMismatch     = common.Invariant(moduleName, "the amount of TOKEN held by the contract is incorrect")
	ErrBeneficiaryNotFound = common.Precondition(moduleName, "beneficiary not found")
	ErrNothingToRelease    = common.Precondition(moduleName, "no tokens to release")
	ErrNotRevocable        = common.Precondition(moduleName, "not revocable")
	ErrAlreadyRevoked      = common.Precondition(moduleName, "already revoked")
	ErrCommitmentOverflow  = common.Invariant(moduleName, "total committed exceeds uint256 range")
)
