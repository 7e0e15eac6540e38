package repositories

import (
	"context"
	"errors"
	"strings"

	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type SubscriberRepository interface {
	Create(ctx context.Context, email string) (*models.Subscriber, error)
}

type subscriberRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSubscriberRepository(db database.DB) SubscriberRepository {
	return &subscriberRepository{
		db:  db,
		log: logger.New("subscriberRepository"),
	}
}

// Create stores the lower-cased address. A repeat address returns types.ErrConflict.
func (r *subscriberRepository) Create(ctx context.Context, email string) (*models.Subscriber, error) {
	log := r.log.Function("Create")

	subscriber := &models.Subscriber{Email: strings.ToLower(strings.TrimSpace(email))}
	err := r.db.SQLWithContext(ctx).Create(subscriber).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, types.ErrConflict
	}
	if err != nil {
		return nil, log.Err("failed to create subscriber", err)
	}

	return subscriber, nil
}
