package repositories

import (
	"context"
	"testing"

	"linkpage/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubscriberRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "subscribers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	subscriber, err := NewSubscriberRepository(db).Create(context.Background(), "  Fan@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", subscriber.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "subscribers"`).WillReturnError(gorm.ErrDuplicatedKey)

	_, err := NewSubscriberRepository(db).Create(context.Background(), "fan@example.com")
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
