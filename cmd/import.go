package cmd

import (
	"context"
	"fmt"
	"os"

	"guildkeeper/database"
	"guildkeeper/repository"
)

// ImportFiles copies the JSON documents under DATA_DIR into the postgres
// documents table and returns how many were written. Like the migrate
// commands it reads the environment directly so no Discord token is needed.
func ImportFiles(ctx context.Context) (int, error) {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	src, err := repository.NewFileStore(dataDir)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	databaseURL := database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	dst := repository.NewPostgresStore(db)
	defer dst.Close()

	return repository.ImportDocuments(ctx, src, dst)
}
