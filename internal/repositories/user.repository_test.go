package repositories

import (
	"context"
	"testing"
	"time"

	"linkpage/internal/models"
	"linkpage/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectUserByProvider = `SELECT \* FROM "users" WHERE .*provider = \$1 AND provider_user_id = \$2`

func TestUserRepository_FindOrCreateNewUser(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(selectUserByProvider).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	user, err := NewUserRepository(db).FindOrCreate(context.Background(), models.Identity{
		Provider:       models.ProviderDiscord,
		ProviderUserID: "123",
		DisplayName:    "Nova",
		Email:          "nova@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Nova", user.DisplayName)
	require.NotNil(t, user.Email)
	assert.Equal(t, "nova@example.com", *user.Email)
	assert.NotNil(t, user.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindOrCreateExistingUser(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(selectUserByProvider).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "provider_user_id", "display_name", "created_at"}).
			AddRow(id, "github", "77", "old name", time.Now()))
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := NewUserRepository(db).FindOrCreate(context.Background(), models.Identity{
		Provider:       models.ProviderGithub,
		ProviderUserID: "77",
		DisplayName:    "new name",
	})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "new name", user.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		db, _ := newMockDB(t)
		_, err := NewUserRepository(db).GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewUserRepository(db).GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "provider_user_id"}).AddRow(id, "discord", "9"))

		user, err := NewUserRepository(db).GetByID(context.Background(), id.String())
		require.NoError(t, err)
		assert.True(t, user.IsDiscord())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
