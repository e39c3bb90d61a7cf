package vesting

import (
	"fmt"
	"math/big"

	"yonledger/native/access"
	"yonledger/native/release"
)

const kindLedger = "ledger"

// Ledger runs multi-beneficiary vestings that share one schedule and one
// custody account. Instances are addressed by id.
type Ledger struct {
	base
}

// NewLedger creates a ledger engine with a no-op emitter.
func NewLedger() *Ledger {
	return &Ledger{base: newBase()}
}

func (l *Ledger) roles(id [32]byte) *access.Controller {
	return access.NewController(l.state, LedgerCustody(id), moduleName)
}

func (l *Ledger) load(id [32]byte) (*LedgerState, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	ledger, ok, err := l.state.VestingLedgerGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || ledger == nil {
		return nil, ErrLedgerNotFound
	}
	return ledger, nil
}

func (l *Ledger) commitment(id [32]byte, who [20]byte) (*Commitment, bool, error) {
	c, ok, err := l.state.VestingCommitmentGet(id, who)
	if err != nil {
		return nil, false, err
	}
	if !ok || c == nil {
		return &Commitment{Beneficiary: who, Amount: big.NewInt(0), Released: big.NewInt(0)}, false, nil
	}
	return c, true, nil
}

// Create stores a new ledger in setup mode and seeds its roles.
func (l *Ledger) Create(id [32]byte, schedule release.Schedule, roles Roles) (*LedgerState, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if _, ok, err := l.state.VestingLedgerGet(id); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrLedgerExists
	}
	ledger := &LedgerState{
		ID:             id,
		Schedule:       schedule,
		Mode:           ModeSetup,
		TotalCommitted: big.NewInt(0),
		TotalReleased:  big.NewInt(0),
	}
	ctrl := l.roles(id)
	if err := ctrl.Seed(access.RoleAdmin, roles.Admins...); err != nil {
		return nil, err
	}
	if err := ctrl.Seed(access.RoleInitiator, roles.Initiators...); err != nil {
		return nil, err
	}
	if err := ctrl.Seed(access.RoleActivator, roles.Activators...); err != nil {
		return nil, err
	}
	if err := l.state.VestingLedgerPut(ledger); err != nil {
		return nil, err
	}
	return ledger.Clone(), nil
}

// Get returns a copy of the ledger record.
func (l *Ledger) Get(id [32]byte) (*LedgerState, error) {
	ledger, err := l.load(id)
	if err != nil {
		return nil, err
	}
	return ledger.Clone(), nil
}

// AppendBeneficiary registers a commitment while the ledger is in setup.
func (l *Ledger) AppendBeneficiary(id [32]byte, caller, who [20]byte, amount *big.Int) error {
	ledger, err := l.load(id)
	if err != nil {
		return err
	}
	if err := l.roles(id).Require(access.RoleInitiator, caller); err != nil {
		return err
	}
	if ledger.Live() {
		return ErrNotSetup
	}
	if who == ([20]byte{}) {
		return ErrZeroBeneficiary
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := release.CheckAmount(amount); err != nil {
		return ErrCommitmentOverflow
	}
	if _, exists, err := l.commitment(id, who); err != nil {
		return err
	} else if exists {
		return ErrAppendFailed
	}
	total := new(big.Int).Add(cloneBigInt(ledger.TotalCommitted), amount)
	if err := release.CheckAmount(total); err != nil {
		return ErrCommitmentOverflow
	}
	commitment := &Commitment{Beneficiary: who, Amount: new(big.Int).Set(amount), Released: big.NewInt(0)}
	if err := l.state.VestingCommitmentPut(id, commitment); err != nil {
		return err
	}
	ledger.TotalCommitted = total
	if err := l.state.VestingLedgerPut(ledger); err != nil {
		return err
	}
	l.emit(AppendedEvent(id, who, amount))
	return nil
}

// RemoveBeneficiary deletes a commitment while the ledger is in setup.
func (l *Ledger) RemoveBeneficiary(id [32]byte, caller, who [20]byte) error {
	ledger, err := l.load(id)
	if err != nil {
		return err
	}
	if err := l.roles(id).Require(access.RoleInitiator, caller); err != nil {
		return err
	}
	if ledger.Live() {
		return ErrNotSetup
	}
	commitment, exists, err := l.commitment(id, who)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRemoveFailed
	}
	if err := l.state.VestingCommitmentDelete(id, who); err != nil {
		return err
	}
	ledger.TotalCommitted = release.Remaining(ledger.TotalCommitted, commitment.Amount)
	if err := l.state.VestingLedgerPut(ledger); err != nil {
		return err
	}
	l.emit(RemovedEvent(id, who, commitment.Amount))
	return nil
}

// SetLive switches the ledger to live mode once every initiator has been
// removed and the custody account covers the committed total.
func (l *Ledger) SetLive(id [32]byte, caller [20]byte) error {
	ledger, err := l.load(id)
	if err != nil {
		return err
	}
	ctrl := l.roles(id)
	if err := ctrl.Require(access.RoleActivator, caller); err != nil {
		return err
	}
	if ledger.Live() {
		return ErrAlreadyLive
	}
	initiators, err := ctrl.Members(access.RoleInitiator)
	if err != nil {
		return err
	}
	if len(initiators) > 0 {
		return ErrInitiatorsRemain
	}
	balance, err := l.balanceOf(LedgerCustody(id))
	if err != nil {
		return err
	}
	if balance.Cmp(cloneBigInt(ledger.TotalCommitted)) < 0 {
		return ErrCustodyMismatch
	}
	ledger.Mode = ModeLive
	if err := l.state.VestingLedgerPut(ledger); err != nil {
		return err
	}
	l.emit(LiveEvent(id, caller, ledger.TotalCommitted))
	return nil
}

// IsLive reports whether the ledger accepts releases.
func (l *Ledger) IsLive(id [32]byte) (bool, error) {
	ledger, err := l.load(id)
	if err != nil {
		return false, err
	}
	return ledger.Live(), nil
}

func (l *Ledger) view(id [32]byte, who [20]byte) (*LedgerState, *Commitment, error) {
	ledger, err := l.load(id)
	if err != nil {
		return nil, nil, err
	}
	commitment, _, err := l.commitment(id, who)
	if err != nil {
		return nil, nil, err
	}
	return ledger, commitment, nil
}

// Vested returns the portion of who's commitment accrued at the current time.
// An unknown beneficiary reads as zero.
func (l *Ledger) Vested(id [32]byte, who [20]byte) (*big.Int, error) {
	ledger, commitment, err := l.view(id, who)
	if err != nil {
		return nil, err
	}
	return ledger.Schedule.Vested(commitment.Amount, l.now())
}

// Released returns the amount already paid out to who.
func (l *Ledger) Released(id [32]byte, who [20]byte) (*big.Int, error) {
	_, commitment, err := l.view(id, who)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(commitment.Released), nil
}

// Releasable returns the vested amount not yet released to who.
func (l *Ledger) Releasable(id [32]byte, who [20]byte) (*big.Int, error) {
	ledger, commitment, err := l.view(id, who)
	if err != nil {
		return nil, err
	}
	return ledger.Schedule.Releasable(commitment.Amount, commitment.Released, l.now())
}

// Locked returns the portion of who's commitment that has not vested yet.
func (l *Ledger) Locked(id [32]byte, who [20]byte) (*big.Int, error) {
	ledger, commitment, err := l.view(id, who)
	if err != nil {
		return nil, err
	}
	return ledger.Schedule.Locked(commitment.Amount, l.now())
}

// Commitment returns the committed amount of who. Only initiators and
// activators may inspect commitments.
func (l *Ledger) Commitment(id [32]byte, caller, who [20]byte) (*Commitment, error) {
	if _, err := l.load(id); err != nil {
		return nil, err
	}
	if err := l.roles(id).RequireAny(caller, access.RoleInitiator, access.RoleActivator); err != nil {
		return nil, err
	}
	commitment, _, err := l.commitment(id, who)
	if err != nil {
		return nil, err
	}
	return commitment.Clone(), nil
}

// TotalCommitted returns the sum of all commitments. Only initiators and
// activators may inspect it.
func (l *Ledger) TotalCommitted(id [32]byte, caller [20]byte) (*big.Int, error) {
	ledger, err := l.load(id)
	if err != nil {
		return nil, err
	}
	if err := l.roles(id).RequireAny(caller, access.RoleInitiator, access.RoleActivator); err != nil {
		return nil, err
	}
	return cloneBigInt(ledger.TotalCommitted), nil
}

// Beneficiaries returns the sorted ids holding a commitment.
func (l *Ledger) Beneficiaries(id [32]byte) ([][20]byte, error) {
	if _, err := l.load(id); err != nil {
		return nil, err
	}
	return l.state.VestingBeneficiaries(id)
}

func (l *Ledger) loadLive(id [32]byte) (*LedgerState, error) {
	ledger, err := l.load(id)
	if err != nil {
		return nil, err
	}
	if !ledger.Live() {
		return nil, ErrNotLive
	}
	return ledger, nil
}

// sum folds fn over every commitment of the ledger.
func (l *Ledger) sum(id [32]byte, fn func(*Commitment) (*big.Int, error)) (*big.Int, error) {
	beneficiaries, err := l.state.VestingBeneficiaries(id)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, who := range beneficiaries {
		commitment, _, err := l.commitment(id, who)
		if err != nil {
			return nil, err
		}
		value, err := fn(commitment)
		if err != nil {
			return nil, fmt.Errorf("vesting: beneficiary %x: %w", who, err)
		}
		total.Add(total, value)
	}
	return total, nil
}

// TotalVested returns the outstanding custody obligation: the total committed
// minus the total released, whether or not it has vested yet. It is only
// available once the ledger is live.
func (l *Ledger) TotalVested(id [32]byte) (*big.Int, error) {
	ledger, err := l.loadLive(id)
	if err != nil {
		return nil, err
	}
	return release.Remaining(ledger.TotalCommitted, ledger.TotalReleased), nil
}

// TotalReleasable returns the sum of releasable amounts across all
// beneficiaries. It is only available once the ledger is live.
func (l *Ledger) TotalReleasable(id [32]byte) (*big.Int, error) {
	ledger, err := l.loadLive(id)
	if err != nil {
		return nil, err
	}
	now := l.now()
	return l.sum(id, func(c *Commitment) (*big.Int, error) {
		return ledger.Schedule.Releasable(c.Amount, c.Released, now)
	})
}

// TotalReleased returns the amount paid out across all beneficiaries. It is
// only available once the ledger is live.
func (l *Ledger) TotalReleased(id [32]byte) (*big.Int, error) {
	ledger, err := l.loadLive(id)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(ledger.TotalReleased), nil
}

// Release pays the caller everything vested but not yet released. State is
// updated before the token transfer; a failed transfer restores it.
func (l *Ledger) Release(id [32]byte, caller [20]byte) (*big.Int, error) {
	ledger, err := l.loadLive(id)
	if err != nil {
		return nil, err
	}
	if l.token == nil {
		return nil, errNilToken
	}
	commitment, exists, err := l.commitment(id, caller)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBeneficiaryNotFound
	}
	amount, err := ledger.Schedule.Releasable(commitment.Amount, commitment.Released, l.now())
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, ErrNothingToRelease
	}

	prevLedger := ledger.Clone()
	prevCommitment := commitment.Clone()
	commitment.Released = new(big.Int).Add(cloneBigInt(commitment.Released), amount)
	ledger.TotalReleased = new(big.Int).Add(cloneBigInt(ledger.TotalReleased), amount)
	if err := l.state.VestingCommitmentPut(id, commitment); err != nil {
		return nil, err
	}
	if err := l.state.VestingLedgerPut(ledger); err != nil {
		_ = l.state.VestingCommitmentPut(id, prevCommitment)
		return nil, err
	}
	if err := l.token.Transfer(LedgerCustody(id), caller, amount); err != nil {
		_ = l.state.VestingCommitmentPut(id, prevCommitment)
		_ = l.state.VestingLedgerPut(prevLedger)
		return nil, fmt.Errorf("vesting: release transfer: %w", err)
	}
	l.emit(ReleasedEvent(id, kindLedger, caller, amount, commitment.Released))
	return amount, nil
}

// GrantRole assigns role to who. The caller must hold the admin role.
func (l *Ledger) GrantRole(id [32]byte, caller [20]byte, role string, who [20]byte) error {
	if _, err := l.load(id); err != nil {
		return err
	}
	return l.roles(id).Grant(caller, role, who)
}

// RevokeRole removes role from who. The caller must hold the admin role.
func (l *Ledger) RevokeRole(id [32]byte, caller [20]byte, role string, who [20]byte) error {
	if _, err := l.load(id); err != nil {
		return err
	}
	return l.roles(id).Revoke(caller, role, who)
}

// RenounceRole drops role from the caller.
func (l *Ledger) RenounceRole(id [32]byte, caller [20]byte, role string) error {
	if _, err := l.load(id); err != nil {
		return err
	}
	return l.roles(id).Renounce(caller, role)
}

// HasRole reports whether who holds role on the ledger.
func (l *Ledger) HasRole(id [32]byte, role string, who [20]byte) (bool, error) {
	if _, err := l.load(id); err != nil {
		return false, err
	}
	return l.roles(id).HasRole(role, who)
}
