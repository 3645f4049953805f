package jsonstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"valutatrade-service/internal/application"
	"valutatrade-service/internal/domain"
)

func Test_UserRepo_CreateAssignsSequentialIDs(t *testing.T) {
	t.Parallel()
	repo := NewUserRepo(filepath.Join(t.TempDir(), "users.json"))
	ctx := context.Background()

	alice, err := repo.Create(ctx, domain.User{Username: "alice", RegisteredAt: testTime})
	require.NoError(t, err)
	require.Equal(t, int64(1), alice.ID)

	bob, err := repo.Create(ctx, domain.User{Username: "bob", RegisteredAt: testTime})
	require.NoError(t, err)
	require.Equal(t, int64(2), bob.ID)
}

func Test_UserRepo_CreateRejectsDuplicateUsername(t *testing.T) {
	t.Parallel()
	repo := NewUserRepo(filepath.Join(t.TempDir(), "users.json"))
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.User{Username: "alice"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{Username: "alice"})
	require.ErrorIs(t, err, application.ErrUserExists)
}

func Test_UserRepo_GetByUsername(t *testing.T) {
	t.Parallel()
	repo := NewUserRepo(filepath.Join(t.TempDir(), "users.json"))
	ctx := context.Background()

	registered := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	_, err := repo.Create(ctx, domain.User{
		Username:       "alice",
		HashedPassword: "deadbeef",
		Salt:           "abcd",
		RegisteredAt:   registered,
	})
	require.NoError(t, err)

	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", u.HashedPassword)
	require.Equal(t, "abcd", u.Salt)
	require.True(t, u.RegisteredAt.Equal(registered))

	_, err = repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
