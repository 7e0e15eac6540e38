package repositories

import (
	"context"
	"errors"
	"time"

	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileConfigRepository interface {
	Get(ctx context.Context) (*models.ProfileConfig, error)
	Save(ctx context.Context, doc models.ProfileDocument) (int64, error)
}

type profileConfigRepository struct {
	db  database.DB
	log logger.Logger
}

func NewProfileConfigRepository(db database.DB) ProfileConfigRepository {
	return &profileConfigRepository{
		db:  db,
		log: logger.New("profileConfigRepository"),
	}
}

// Get returns the stored document, or the default document at version 0 when
// nothing has been saved yet.
func (r *profileConfigRepository) Get(ctx context.Context) (*models.ProfileConfig, error) {
	log := r.log.Function("Get")

	var cfg models.ProfileConfig
	err := r.db.SQLWithContext(ctx).
		Where("key = ?", models.MainConfigKey).
		Take(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ProfileConfig{
			Key:  models.MainConfigKey,
			Data: datatypes.NewJSONType(models.DefaultDocument()),
		}, nil
	}
	if err != nil {
		return nil, log.Err("failed to load profile config", err)
	}

	cfg.Data = datatypes.NewJSONType(cfg.Document().Normalize())
	return &cfg, nil
}

// Save replaces the whole document and bumps the version in one statement.
func (r *profileConfigRepository) Save(ctx context.Context, doc models.ProfileDocument) (int64, error) {
	log := r.log.Function("Save")

	doc = doc.Normalize()
	if err := doc.Validate(); err != nil {
		return 0, log.ErrorWithType(types.ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	row := models.ProfileConfig{
		Key:       models.MainConfigKey,
		Version:   1,
		Data:      datatypes.NewJSONType(doc),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.SQLWithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.Assignments(map[string]any{
					"data":       gorm.Expr("excluded.data"),
					"version":    gorm.Expr("profile_configs.version + 1"),
					"updated_at": gorm.Expr("excluded.updated_at"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "version"}}},
		).
		Create(&row).Error
	if err != nil {
		return 0, log.Err("failed to save profile config", err)
	}

	log.Info("Profile config saved", "version", row.Version)
	return row.Version, nil
}
