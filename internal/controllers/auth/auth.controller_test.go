package authController

import (
	"context"
	"errors"
	"testing"
	"time"

	"linkpage/internal/models"
	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) LoginScreen(source, next string) (services.LoginScreen, error) {
	args := m.Called(source, next)
	return args.Get(0).(services.LoginScreen), args.Error(1)
}

func (m *mockAuthenticator) StartURL(ctx context.Context, provider models.AuthProvider, next string) (string, error) {
	args := m.Called(ctx, provider, next)
	return args.String(0), args.Error(1)
}

func (m *mockAuthenticator) Complete(
	ctx context.Context,
	provider models.AuthProvider,
	state, code string,
) (*models.User, string, error) {
	args := m.Called(ctx, provider, state, code)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthenticator) IssueSession(user *models.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func newController(auth Authenticator) *AuthController {
	return &AuthController{auth: auth, log: logger.New("authController")}
}

func TestStartLogin(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantURL  string
		wantErr  error
	}{
		{name: "discord", provider: "discord", wantURL: "https://discord.test/authorize"},
		{name: "github", provider: "github", wantURL: "https://github.test/authorize"},
		{name: "unknown provider", provider: "myspace", wantErr: types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthenticator{}
			auth.On("StartURL", mock.Anything, models.ProviderDiscord, "/me/admin").
				Return("https://discord.test/authorize", nil).Maybe()
			auth.On("StartURL", mock.Anything, models.ProviderGithub, "/me/admin").
				Return("https://github.test/authorize", nil).Maybe()

			url, err := newController(auth).StartLogin(context.Background(), tt.provider, "/me/admin")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				auth.AssertNotCalled(t, "StartURL", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

func TestCompleteLogin(t *testing.T) {
	user := &models.User{Provider: models.ProviderDiscord, ProviderUserID: "123", DisplayName: "Ada"}
	user.ID = uuid.New()
	expires := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	auth := &mockAuthenticator{}
	auth.On("Complete", mock.Anything, models.ProviderDiscord, "state", "code").Return(user, "/me/admin", nil)
	auth.On("IssueSession", user).Return("signed.jwt", expires, nil)

	result, err := newController(auth).CompleteLogin(context.Background(), "discord", "state", "code")
	require.NoError(t, err)

	assert.Equal(t, "signed.jwt", result.Token)
	assert.Equal(t, expires, result.ExpiresAt)
	assert.Equal(t, "/me/admin", result.Next)
	assert.Equal(t, "123", result.User.DiscordID)
}

func TestCompleteLogin_Failures(t *testing.T) {
	t.Run("exchange failure", func(t *testing.T) {
		auth := &mockAuthenticator{}
		auth.On("Complete", mock.Anything, models.ProviderGithub, "state", "bad").
			Return(nil, "", types.ErrUnauthorized)

		_, err := newController(auth).CompleteLogin(context.Background(), "github", "state", "bad")
		assert.ErrorIs(t, err, types.ErrUnauthorized)
		auth.AssertNotCalled(t, "IssueSession", mock.Anything)
	})

	t.Run("session signing failure", func(t *testing.T) {
		user := &models.User{Provider: models.ProviderGithub}
		auth := &mockAuthenticator{}
		auth.On("Complete", mock.Anything, models.ProviderGithub, "state", "code").Return(user, "/", nil)
		auth.On("IssueSession", user).Return("", time.Time{}, errors.New("no secret"))

		_, err := newController(auth).CompleteLogin(context.Background(), "github", "state", "code")
		assert.EqualError(t, err, "no secret")
	})
}

func TestCurrentUser(t *testing.T) {
	controller := newController(&mockAuthenticator{})

	_, err := controller.CurrentUser(nil)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	profile, err := controller.CurrentUser(&models.User{Provider: models.ProviderGithub, DisplayName: "octo"})
	require.NoError(t, err)
	assert.Equal(t, "octo", profile.DisplayName)
	assert.Empty(t, profile.DiscordID)
}
