package initialize

import (
	"context"

	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

func InitializeTables(db database.DB, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeProfileConfig(db, log); err != nil {
		return log.Err("failed to initialize profile config", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeProfileConfig writes the default document so the first page load
// reads a stored row at version 1.
func initializeProfileConfig(db database.DB, log logger.Logger) error {
	ctx := context.Background()
	repo := repositories.NewProfileConfigRepository(db)

	existing, err := repo.Get(ctx)
	if err != nil {
		return err
	}
	if existing.Version > 0 {
		log.Debug("Profile config already exists", "version", existing.Version)
		return nil
	}

	version, err := repo.Save(ctx, models.DefaultDocument())
	if err != nil {
		return err
	}

	log.Info("Profile config initialized", "key", models.MainConfigKey, "version", version)
	return nil
}
