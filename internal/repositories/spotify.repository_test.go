package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"linkpage/internal/models"
	"linkpage/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotifyRepository_GetToken(t *testing.T) {
	t.Run("none stored", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "spotify_tokens" ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewSpotifyRepository(db).GetToken(context.Background())
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stored", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()
		expires := time.Now().Add(time.Hour).UTC()
		mock.ExpectQuery(`SELECT \* FROM "spotify_tokens" ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "access_token", "refresh_token", "expires_at"}).
				AddRow(id, "access", "refresh", expires))

		token, err := NewSpotifyRepository(db).GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, "access", token.AccessToken)
		assert.Equal(t, "refresh", token.RefreshToken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "spotify_tokens"`).WillReturnError(errors.New("boom"))

		_, err := NewSpotifyRepository(db).GetToken(context.Background())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
	})
}

func TestSpotifyRepository_ReplaceTokenDeletesThenInserts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "spotify_tokens" WHERE 1 = 1`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "spotify_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := NewSpotifyRepository(db).ReplaceToken(context.Background(), &models.SpotifyToken{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotifyRepository_ReplaceTokenRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "spotify_tokens"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "spotify_tokens"`).WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := NewSpotifyRepository(db).ReplaceToken(context.Background(), &models.SpotifyToken{AccessToken: "a"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotifyRepository_UpdateToken(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "spotify_tokens" SET .*"access_token"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewSpotifyRepository(db).UpdateToken(context.Background(), id, "new-access", "", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotifyRepository_DeleteTokens(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "spotify_tokens" WHERE 1 = 1`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewSpotifyRepository(db).DeleteTokens(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotifyRepository_UpsertHistory(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "spotify_history" .*ON CONFLICT \("song_name","artist"\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	err := NewSpotifyRepository(db).UpsertHistory(context.Background(), &models.SpotifyHistory{
		SongName: "Song",
		Artist:   "A, B",
		CoverURL: "https://i.scdn.co/x",
		PlayedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpotifyRepository_LatestHistory(t *testing.T) {
	db, mock := newMockDB(t)
	played := time.Now().Add(-time.Hour).UTC()

	mock.ExpectQuery(`SELECT \* FROM "spotify_history" ORDER BY played_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"song_name", "artist", "cover_url", "played_at"}).
			AddRow("Song", "Band", "https://i.scdn.co/x", played))

	entry, err := NewSpotifyRepository(db).LatestHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Song", entry.SongName)
	assert.True(t, played.Equal(entry.PlayedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
