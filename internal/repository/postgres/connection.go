package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/notes-api/internal/repository"
	"github.com/dom/notes-api/internal/repository/postgres/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultTimeout bounds a single store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

func NewConnection(ctx context.Context, databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded SQL migrations on the pool behind db.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func NewRepositories(db *gorm.DB, timeout time.Duration) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db, timeout),
		RevokedToken: NewRevokedTokenRepository(db, timeout),
		Note:         NewNoteRepository(db, timeout),
	}
}
