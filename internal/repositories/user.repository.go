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
)

const (
	USER_CACHE_EXPIRY = 24 * time.Hour
	USER_CACHE_PREFIX = "user:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	FindOrCreate(ctx context.Context, identity models.Identity) (*models.User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	log := r.log.Function("GetByID")

	var user models.User
	if r.getCacheByID(ctx, id, &user) {
		return &user, nil
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, log.ErrorWithType(types.ErrNotFound, "invalid user id", "userID", id)
	}

	err = r.db.SQLWithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, log.Err("failed to get user by id", err, "userID", id)
	}

	r.addUserToCache(ctx, &user)
	return &user, nil
}

// FindOrCreate upserts the account behind a provider login and stamps the
// login time.
func (r *userRepository) FindOrCreate(ctx context.Context, identity models.Identity) (*models.User, error) {
	log := r.log.Function("FindOrCreate")

	var user models.User
	err := r.db.SQLWithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", identity.Provider, identity.ProviderUserID).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user.UpdateFromIdentity(identity)
		if err := r.db.SQLWithContext(ctx).Create(&user).Error; err != nil {
			return nil, log.Err("failed to create user", err, "provider", identity.Provider)
		}
		log.Info("Created user", "userID", user.ID, "provider", user.Provider)
	case err != nil:
		return nil, log.Err("failed to find user", err, "provider", identity.Provider)
	default:
		user.UpdateFromIdentity(identity)
		if err := r.db.SQLWithContext(ctx).Save(&user).Error; err != nil {
			return nil, log.Err("failed to update user", err, "userID", user.ID)
		}
	}

	r.addUserToCache(ctx, &user)
	return &user, nil
}

func (r *userRepository) getCacheByID(ctx context.Context, id string, user *models.User) bool {
	if r.db.Cache.General == nil {
		return false
	}

	found, err := database.NewCacheBuilder(r.db.Cache.General, USER_CACHE_PREFIX+id).
		WithContext(ctx).
		Get(user)
	if err != nil {
		r.log.Function("getCacheByID").Warn("failed to read user cache", "userID", id, "error", err)
		return false
	}
	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *models.User) {
	if r.db.Cache.General == nil {
		return
	}

	if err := database.NewCacheBuilder(r.db.Cache.General, USER_CACHE_PREFIX+user.ID.String()).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("addUserToCache").Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}
}
