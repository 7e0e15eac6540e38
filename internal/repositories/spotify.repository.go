package repositories

import (
	"context"
	"errors"
	"time"

	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpotifyRepository interface {
	GetToken(ctx context.Context) (*models.SpotifyToken, error)
	ReplaceToken(ctx context.Context, token *models.SpotifyToken) error
	UpdateToken(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
	DeleteTokens(ctx context.Context) error
	UpsertHistory(ctx context.Context, entry *models.SpotifyHistory) error
	LatestHistory(ctx context.Context) (*models.SpotifyHistory, error)
}

type spotifyRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSpotifyRepository(db database.DB) SpotifyRepository {
	return &spotifyRepository{
		db:  db,
		log: logger.New("spotifyRepository"),
	}
}

// GetToken returns types.ErrNotFound when no account is connected.
func (r *spotifyRepository) GetToken(ctx context.Context) (*models.SpotifyToken, error) {
	log := r.log.Function("GetToken")

	var token models.SpotifyToken
	err := r.db.SQLWithContext(ctx).Order("created_at DESC").Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, log.Err("failed to load spotify token", err)
	}

	return &token, nil
}

// ReplaceToken removes every stored token and inserts the new one.
func (r *spotifyRepository) ReplaceToken(ctx context.Context, token *models.SpotifyToken) error {
	log := r.log.Function("ReplaceToken")

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SpotifyToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return log.Err("failed to replace spotify token", err)
	}

	return nil
}

// UpdateToken persists a refreshed access token. An empty refresh token keeps
// the stored one.
func (r *spotifyRepository) UpdateToken(
	ctx context.Context,
	id uuid.UUID,
	accessToken, refreshToken string,
	expiresAt time.Time,
) error {
	log := r.log.Function("UpdateToken")

	updates := map[string]any{
		"access_token": accessToken,
		"expires_at":   expiresAt,
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}

	if err := r.db.SQLWithContext(ctx).
		Model(&models.SpotifyToken{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return log.Err("failed to update spotify token", err, "id", id)
	}

	return nil
}

func (r *spotifyRepository) DeleteTokens(ctx context.Context) error {
	log := r.log.Function("DeleteTokens")

	if err := r.db.SQLWithContext(ctx).Where("1 = 1").Delete(&models.SpotifyToken{}).Error; err != nil {
		return log.Err("failed to delete spotify tokens", err)
	}

	return nil
}

func (r *spotifyRepository) UpsertHistory(ctx context.Context, entry *models.SpotifyHistory) error {
	log := r.log.Function("UpsertHistory")

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "song_name"}, {Name: "artist"}},
			DoUpdates: clause.AssignmentColumns([]string{"cover_url", "played_at"}),
		}).
		Create(entry).Error
	if err != nil {
		return log.Err("failed to upsert spotify history", err, "song", entry.SongName)
	}

	return nil
}

// LatestHistory returns types.ErrNotFound when nothing has been played yet.
func (r *spotifyRepository) LatestHistory(ctx context.Context) (*models.SpotifyHistory, error) {
	log := r.log.Function("LatestHistory")

	var entry models.SpotifyHistory
	err := r.db.SQLWithContext(ctx).Order("played_at DESC").Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, log.Err("failed to load spotify history", err)
	}

	return &entry, nil
}
