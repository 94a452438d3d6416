package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vaultmind/accountd/internal/account/domain"
	"github.com/vaultmind/accountd/internal/account/store"
	"github.com/vaultmind/accountd/internal/account/store/drivers/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testAccount(username string) domain.Account {
	expire := time.Now().UTC().Add(5 * time.Minute)
	return domain.Account{
		Name:            "john",
		Surname:         "doe",
		Username:        username,
		Email:           "john@example.com",
		PasswordHash:    "$2a$10$fakefakefakefakefakefake",
		Status:          domain.StatusNew,
		AccountExpireAt: &expire,
	}
}

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := st.Accounts().FindByUsername(ctx, "john_doe")
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.Equal(t, domain.StatusNew, got.Status)
	require.NotNil(t, got.AccountExpireAt)
	require.Nil(t, got.TOTPSecret)
	require.Nil(t, got.SessionToken)
	require.Nil(t, got.LastLoginAt)
	require.False(t, got.IsAdmin)
	require.False(t, got.CreatedAt.IsZero())
}

func TestInsertDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)

	_, err = st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestFindByUsernameNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Accounts().FindByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindByIDAndUsernameRequiresBothToMatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)
	otherID, err := st.Accounts().Insert(ctx, testAccount("jane_doe"))
	require.NoError(t, err)

	_, err = st.Accounts().FindByIDAndUsername(ctx, id, "john_doe")
	require.NoError(t, err)

	// Valid id paired with a different record's username must not match.
	_, err = st.Accounts().FindByIDAndUsername(ctx, otherID, "john_doe")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Accounts().FindByIDAndUsername(ctx, "bogus", "john_doe")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFindAndUpdateActivation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)

	active := domain.StatusActive
	token := "signed-token"
	now := time.Now().UTC()

	got, err := st.Accounts().FindAndUpdate(ctx, id, store.AccountUpdate{
		Status:       &active,
		SessionToken: &token,
		LastLoginAt:  &now,
		ClearExpiry:  true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Nil(t, got.AccountExpireAt)
	require.NotNil(t, got.SessionToken)
	require.Equal(t, token, *got.SessionToken)
	require.NotNil(t, got.LastLoginAt)
}

func TestFindAndUpdatePartialMergeLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)

	now := time.Now().UTC()
	got, err := st.Accounts().FindAndUpdate(ctx, id, store.AccountUpdate{LastLoginAt: &now})
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, got.Status)
	require.NotNil(t, got.AccountExpireAt)
	require.NotNil(t, got.LastLoginAt)
}

func TestFindAndUpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	now := time.Now().UTC()
	_, err := st.Accounts().FindAndUpdate(ctx, "missing", store.AccountUpdate{LastLoginAt: &now})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveReportsDeletion(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	id, err := st.Accounts().Insert(ctx, testAccount("john_doe"))
	require.NoError(t, err)

	deleted, err := st.Accounts().Remove(ctx, id)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = st.Accounts().Remove(ctx, id)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = st.Accounts().FindByUsername(ctx, "john_doe")
	require.ErrorIs(t, err, store.ErrNotFound)
}
