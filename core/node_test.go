package core

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"yonledger/config"
	"yonledger/core/events"
	"yonledger/crypto"
	"yonledger/journal"
	"yonledger/native/access"
	"yonledger/native/common"
	"yonledger/native/release"
	"yonledger/native/staking"
	"yonledger/native/vesting"
	"yonledger/storage"
)

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func (c *capturingEmitter) types() []string {
	out := make([]string, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.EventType())
	}
	return out
}

func addr(fill byte) [20]byte {
	var out [20]byte
	for i := range out {
		out[i] = fill
	}
	return out
}

type nodeFixture struct {
	node    *Node
	emitter *capturingEmitter
	now     int64
}

func newNodeFixture(t *testing.T) *nodeFixture {
	t.Helper()
	node, err := NewNode(storage.NewMemDB(), "YON", nil)
	require.NoError(t, err)
	f := &nodeFixture{node: node, emitter: &capturingEmitter{}, now: 1_000}
	node.SetEmitter(f.emitter)
	node.SetNowFunc(func() int64 { return f.now })
	t.Cleanup(func() { _ = node.Close() })
	return f
}

func balance(t *testing.T, n *Node, who [20]byte) *big.Int {
	t.Helper()
	got, err := n.BalanceOf(context.Background(), who)
	require.NoError(t, err)
	return got
}

func TestNodeVestingLifecycle(t *testing.T) {
	f := newNodeFixture(t)
	ctx := context.Background()
	treasury, initiator, activator := addr(0x01), addr(0x02), addr(0x03)
	alice, bob := addr(0x0A), addr(0x0B)
	id := InstanceID("team")

	require.NoError(t, f.node.Mint(ctx, treasury, big.NewInt(2_000_000)))
	schedule, err := release.NewSchedule(1_000, 300)
	require.NoError(t, err)
	_, err = f.node.CreateVesting(ctx, id, schedule, vesting.Roles{
		Initiators: [][20]byte{initiator},
		Activators: [][20]byte{activator},
	})
	require.NoError(t, err)

	require.NoError(t, f.node.AppendBeneficiary(ctx, id, initiator, alice, big.NewInt(400_000)))
	require.NoError(t, f.node.AppendBeneficiary(ctx, id, initiator, bob, big.NewInt(800_000)))
	require.NoError(t, f.node.RenounceVestingRole(ctx, id, initiator, access.RoleInitiator))

	err = f.node.SetLive(ctx, id, activator)
	require.ErrorIs(t, err, vesting.ErrCustodyMismatch)

	require.NoError(t, f.node.Transfer(ctx, treasury, vesting.LedgerCustody(id), big.NewInt(1_200_000)))
	require.NoError(t, f.node.SetLive(ctx, id, activator))

	f.now = 1_090
	paid, err := f.node.ReleaseVesting(ctx, id, alice)
	require.NoError(t, err)
	require.Zero(t, paid.Cmp(big.NewInt(120_000)))
	require.Zero(t, balance(t, f.node, alice).Cmp(big.NewInt(120_000)))

	_, err = f.node.ReleaseVesting(ctx, id, alice)
	require.ErrorIs(t, err, vesting.ErrNothingToRelease)

	vested, released, releasable, locked, err := f.node.VestingAmounts(ctx, id, bob)
	require.NoError(t, err)
	require.Zero(t, vested.Cmp(big.NewInt(240_000)))
	require.Zero(t, released.Sign())
	require.Zero(t, releasable.Cmp(big.NewInt(240_000)))
	require.Zero(t, locked.Cmp(big.NewInt(560_000)))

	f.now = 1_300
	_, err = f.node.ReleaseVesting(ctx, id, alice)
	require.NoError(t, err)
	_, err = f.node.ReleaseVesting(ctx, id, bob)
	require.NoError(t, err)
	totals, err := f.node.VestingTotals(ctx, id)
	require.NoError(t, err)
	require.Zero(t, totals.Released.Cmp(big.NewInt(1_200_000)))
	require.Zero(t, totals.Releasable.Sign())
	require.Zero(t, balance(t, f.node, vesting.LedgerCustody(id)).Sign())

	require.Contains(t, f.emitter.types(), vesting.EventTypeLive)
	require.Contains(t, f.emitter.types(), vesting.EventTypeReleased)
}

func TestNodeFailedOperationDiscardsEverything(t *testing.T) {
	f := newNodeFixture(t)
	ctx := context.Background()
	funder := addr(0x05)
	id := InstanceID("staking")

	_, err := f.node.CreatePool(ctx, id, 180, staking.DefaultTiers(0))
	require.NoError(t, err)
	require.NoError(t, f.node.Mint(ctx, funder, big.NewInt(100)))
	before := len(f.emitter.events)

	// The approval succeeds inside the operation but the pull fails, so the
	// allowance must not survive.
	err = f.node.FundPool(ctx, id, funder, big.NewInt(500))
	require.Error(t, err)
	require.Len(t, f.emitter.events, before)

	pool, err := f.node.Pool(ctx, id)
	require.NoError(t, err)
	require.Zero(t, pool.RewardPool.Sign())
	require.Zero(t, balance(t, f.node, funder).Cmp(big.NewInt(100)))
	require.Zero(t, f.node.state.Pending())
}

func TestNodeStakingLifecycle(t *testing.T) {
	f := newNodeFixture(t)
	ctx := context.Background()
	funder, staker := addr(0x06), addr(0x07)
	id := InstanceID("staking")

	_, err := f.node.CreatePool(ctx, id, 180, staking.DefaultTiers(0))
	require.NoError(t, err)
	require.NoError(t, f.node.Mint(ctx, funder, big.NewInt(500_000)))
	require.NoError(t, f.node.Mint(ctx, staker, big.NewInt(150_000)))
	require.NoError(t, f.node.FundPool(ctx, id, funder, big.NewInt(500_000)))

	pos, err := f.node.Join(ctx, id, staker, big.NewInt(150_000))
	require.NoError(t, err)
	require.Zero(t, pos.Gift.Cmp(big.NewInt(10_500)))
	require.Equal(t, int64(1_180), pos.UnlockDate)

	f.now = 1_180
	_, err = f.node.ReleaseStake(ctx, id, staker)
	require.ErrorIs(t, err, staking.ErrNotReleasable)

	f.now = 1_181
	paid, err := f.node.ReleaseStake(ctx, id, staker)
	require.NoError(t, err)
	require.Zero(t, paid.Cmp(big.NewInt(160_500)))
	require.Zero(t, balance(t, f.node, staker).Cmp(big.NewInt(160_500)))

	pool, err := f.node.Pool(ctx, id)
	require.NoError(t, err)
	require.Zero(t, pool.RewardPool.Cmp(big.NewInt(489_500)))
	require.Zero(t, pool.Reserved.Sign())
}

func TestNodeSingleVestingRevoke(t *testing.T) {
	f := newNodeFixture(t)
	ctx := context.Background()
	treasury, beneficiary, revoker := addr(0x01), addr(0x0C), addr(0x0D)
	id := InstanceID("advisor")

	_, err := f.node.CreateSingleVesting(ctx, vesting.SingleParams{
		ID:          id,
		Beneficiary: beneficiary,
		Duration:    150 * release.SecondsPerDay,
		Revoker:     revoker,
	})
	require.NoError(t, err)
	require.NoError(t, f.node.Mint(ctx, treasury, big.NewInt(10_000)))
	require.NoError(t, f.node.Transfer(ctx, treasury, vesting.SingleCustody(id), big.NewInt(10_000)))

	f.now += 50 * release.SecondsPerDay
	err = f.node.RevokeSingle(ctx, id, beneficiary)
	require.True(t, common.IsAuthorization(err))
	require.NoError(t, f.node.RevokeSingle(ctx, id, revoker))

	f.now += 100 * release.SecondsPerDay
	summary, err := f.node.SingleVesting(ctx, id)
	require.NoError(t, err)
	require.True(t, summary.State.Revoked)
	require.Zero(t, summary.Vested.Cmp(big.NewInt(3_333)))
	require.Zero(t, summary.Locked.Sign())
	require.Zero(t, summary.Unvested.Cmp(big.NewInt(6_667)))

	paid, err := f.node.ReleaseSingle(ctx, id, beneficiary)
	require.NoError(t, err)
	require.Zero(t, paid.Cmp(big.NewInt(3_333)))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	owner := crypto.FromRaw(addr(0x01)).String()
	contents := `
[Node]
DataDir = "` + filepath.Join(dir, "data") + `"
JournalDSN = "` + filepath.Join(dir, "journal.db") + `"

[Token]
Symbol = "YON"
Cap = "10_000_000"

[[Token.Allocation]]
Address = "` + owner + `"
Amount = "2_000_000"

[Staking]
LockDuration = "180s"

[[Vesting]]
Name = "team"
Start = 1000
Duration = "300s"
Initiators = ["` + owner + `"]
Activators = ["` + owner + `"]

[[SingleVesting]]
Name = "advisor"
Beneficiary = "` + owner + `"
Duration = "24h"
`
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestOpenBootstrapsAndReopens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	cfg, err := config.Load(writeConfig(t, dir))
	require.NoError(t, err)

	node, err := Open(ctx, cfg)
	require.NoError(t, err)
	_, err = node.VestingLedger(ctx, InstanceID("team"))
	require.NoError(t, err)
	_, err = node.Pool(ctx, InstanceID("staking"))
	require.NoError(t, err)
	require.Zero(t, balance(t, node, addr(0x01)).Cmp(big.NewInt(2_000_000)))
	require.NoError(t, node.Close())

	node, err = Open(ctx, cfg)
	require.NoError(t, err)
	supply, err := node.TotalSupply(ctx)
	require.NoError(t, err)
	require.Zero(t, supply.Cmp(big.NewInt(2_000_000)))
	require.NoError(t, node.Close())

	store, err := journal.Open(cfg.Node.JournalDSN)
	require.NoError(t, err)
	defer store.Close()
	mints, err := store.List(ctx, journal.Filter{Type: "token.mint"})
	require.NoError(t, err)
	require.Len(t, mints, 1)
}

func TestInstanceIDIsStable(t *testing.T) {
	require.Equal(t, InstanceID("team"), InstanceID(" team "))
	require.NotEqual(t, InstanceID("team"), InstanceID("advisor"))
}
