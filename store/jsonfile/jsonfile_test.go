package jsonfile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOUR0003/star-academy/engine"
	"github.com/NOUR0003/star-academy/store/jsonfile"
)

func openStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "data", "academy.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoad_EmptyFileMeansNoSnapshot(t *testing.T) {
	// GIVEN: A freshly created snapshot file
	store := openStore(t)

	// WHEN: Loading before anything was saved
	_, found, err := store.Load(context.Background())

	// THEN: The store reports "no snapshot" so the engine seeds defaults
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	// GIVEN: A snapshot with money, lessons and an in-flight deposit
	ctx := context.Background()
	store := openStore(t)
	state := engine.DefaultState(engine.DefaultOwner())
	state.Users = append(state.Users, engine.User{
		ID:               "u-42",
		Username:         "ahmed",
		Email:            "ahmed@example.com",
		Role:             engine.RoleStudent,
		Balance:          engine.NewAmountFromInt(125),
		PurchasedLessons: []engine.LessonID{"l1"},
	})
	state.Activity = append(state.Activity, engine.EntitlementRecord{
		UserID: "u-42", LessonID: "l1", ViewsUsed: 2,
	})
	state.DepositRequests = append(state.DepositRequests, engine.DepositRequest{
		ID: "d-1", UserID: "u-42", Amount: engine.NewAmountFromInt(50),
		Status: engine.DepositPending,
	})
	state.CurrentUser = "u-42"

	// WHEN: Saving and loading it back
	require.NoError(t, store.Save(ctx, state))
	loaded, found, err := store.Load(ctx)

	// THEN: Everything survives, including the decimal balances
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.Users, 2)
	assert.Equal(t, engine.UserID("u-42"), loaded.CurrentUser)
	assert.True(t, loaded.Users[1].Balance.Equal(engine.NewAmountFromInt(125)))
	assert.Equal(t, []engine.LessonID{"l1"}, loaded.Users[1].PurchasedLessons)
	require.Len(t, loaded.Activity, 1)
	assert.Equal(t, 2, loaded.Activity[0].ViewsUsed)
	require.Len(t, loaded.DepositRequests, 1)
	assert.Equal(t, engine.DepositPending, loaded.DepositRequests[0].Status)
}

func TestSave_TruncatesShrinkingSnapshot(t *testing.T) {
	// GIVEN: A large snapshot already on disk
	ctx := context.Background()
	store := openStore(t)
	big := engine.DefaultState(engine.DefaultOwner())
	for i := 0; i < 25; i++ {
		big.Users = append(big.Users, engine.User{
			ID:       engine.UserID("u-" + string(rune('a'+i))),
			Username: "filler",
			Role:     engine.RoleStudent,
			Balance:  engine.NewAmountFromInt(0),
		})
	}
	require.NoError(t, store.Save(ctx, big))

	// WHEN: Overwriting it with a much smaller one
	small := engine.DefaultState(engine.DefaultOwner())
	require.NoError(t, store.Save(ctx, small))

	// THEN: No stale tail of the old document corrupts the file
	loaded, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, loaded.Users, 1)
}
