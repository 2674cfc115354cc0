package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenth-speed-writer/PFLTK/internal/adapters/sqlite"
	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
	"github.com/tenth-speed-writer/PFLTK/internal/ports/secondary"
)

func TestUserRepository_UpsertAndGet(t *testing.T) {
	repo := sqlite.NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetRole(ctx, 42, "guild-a")
	assert.True(t, apperr.IsKind(err, apperr.NotFound), "unset role: got %v", err)

	require.NoError(t, repo.UpsertRole(ctx, &secondary.UserRoleRecord{UserID: 42, Guild: "guild-a", Role: "SUBMITTER", UpdatedAt: t0}))
	require.NoError(t, repo.UpsertRole(ctx, &secondary.UserRoleRecord{UserID: 42, Guild: "guild-a", Role: "SUPERVISOR", UpdatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.UpsertRole(ctx, &secondary.UserRoleRecord{UserID: 42, Guild: "guild-b", Role: "TEAMSTER", UpdatedAt: t0}))

	got, err := repo.GetRole(ctx, 42, "guild-a")
	require.NoError(t, err)
	assert.Equal(t, "SUPERVISOR", got.Role)
	assert.True(t, got.UpdatedAt.Equal(t0.Add(time.Minute)))

	other, err := repo.GetRole(ctx, 42, "guild-b")
	require.NoError(t, err)
	assert.Equal(t, "TEAMSTER", other.Role, "roles are scoped per guild")
}

func TestUserRepository_RejectsUnknownRole(t *testing.T) {
	repo := sqlite.NewUserRepository(setupTestDB(t))

	err := repo.UpsertRole(context.Background(), &secondary.UserRoleRecord{UserID: 1, Guild: "g", Role: "WARDEN"})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument), "got %v", err)
}

func TestUserRepository_DeleteRole(t *testing.T) {
	repo := sqlite.NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, &secondary.UserRoleRecord{UserID: 7, Guild: "g", Role: "ADMIN"}))
	require.NoError(t, repo.DeleteRole(ctx, 7, "g"))

	_, err := repo.GetRole(ctx, 7, "g")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	err = repo.DeleteRole(ctx, 7, "g")
	assert.True(t, apperr.IsKind(err, apperr.NotFound), "second delete: got %v", err)
}
