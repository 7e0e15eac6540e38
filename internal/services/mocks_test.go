package services

import (
	"context"
	"time"

	"linkpage/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSpotifyRepository struct {
	mock.Mock
}

func (m *mockSpotifyRepository) GetToken(ctx context.Context) (*models.SpotifyToken, error) {
	args := m.Called(ctx)
	token, _ := args.Get(0).(*models.SpotifyToken)
	return token, args.Error(1)
}

func (m *mockSpotifyRepository) ReplaceToken(ctx context.Context, token *models.SpotifyToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSpotifyRepository) UpdateToken(
	ctx context.Context,
	id uuid.UUID,
	accessToken, refreshToken string,
	expiresAt time.Time,
) error {
	return m.Called(ctx, id, accessToken, refreshToken, expiresAt).Error(0)
}

func (m *mockSpotifyRepository) DeleteTokens(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSpotifyRepository) UpsertHistory(ctx context.Context, entry *models.SpotifyHistory) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSpotifyRepository) LatestHistory(ctx context.Context) (*models.SpotifyHistory, error) {
	args := m.Called(ctx)
	entry, _ := args.Get(0).(*models.SpotifyHistory)
	return entry, args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) FindOrCreate(ctx context.Context, identity models.Identity) (*models.User, error) {
	args := m.Called(ctx, identity)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
