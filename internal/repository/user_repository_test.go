package repository

import (
	"context"
	"testing"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	user, err := repo.Create(ctx, &model.User{
		Username:     "mr-lopez",
		PasswordHash: "$2a$10$hash",
		Role:         model.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	t.Run("find by username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "mr-lopez")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "$2a$10$hash", found.PasswordHash)

		_, err = repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "mr-lopez", found.Username)

		_, err = repo.FindByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update credentials", func(t *testing.T) {
		user.Username = "mr-lopez-2"
		user.PasswordHash = "$2a$10$other"
		require.NoError(t, repo.Update(ctx, user))

		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "mr-lopez-2", found.Username)
		assert.Equal(t, "$2a$10$other", found.PasswordHash)

		assert.ErrorIs(t, repo.Update(ctx, &model.User{ID: 999}), ErrNotFound)
	})
}
