package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yonledger/core/events"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx,
		&events.Record{Type: "vesting.appended", Attributes: map[string]string{"id": "0x01", "amount": "10"}},
		nil,
		&events.Record{Type: "staking.joined", Attributes: map[string]string{"id": "0x02"}},
	))
	store.Emit(events.Wrap(&events.Record{Type: "vesting.released", Attributes: map[string]string{"id": "0x01"}}))

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "vesting.appended", all[0].Type)
	require.Equal(t, "vesting.released", all[2].Type)
	require.NotEqual(t, all[0].ID, all[1].ID)

	rec, err := all[0].Record()
	require.NoError(t, err)
	require.Equal(t, "10", rec.Attributes["amount"])

	vesting, err := store.List(ctx, Filter{Module: "vesting", Instance: "0x01"})
	require.NoError(t, err)
	require.Len(t, vesting, 2)

	limited, err := store.List(ctx, Filter{Type: "staking.joined", Limit: 5})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "staking", limited[0].Module)
}

func TestListSince(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.SetNowFunc(func() time.Time { return base })
	require.NoError(t, store.Append(ctx, &events.Record{Type: "token.mint"}))
	store.SetNowFunc(func() time.Time { return base.Add(time.Hour) })
	require.NoError(t, store.Append(ctx, &events.Record{Type: "token.transfer"}))

	recent, err := store.List(ctx, Filter{Since: base.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "token.transfer", recent[0].Type)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}
