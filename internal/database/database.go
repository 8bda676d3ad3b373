package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toll-system/internal/config"
	"toll-system/internal/logger"

	_ "github.com/lib/pq"
)

// DB оборачивает пул соединений с Postgres
type DB struct {
	*sql.DB
}

// Connect создает подключение к базе данных и проверяет его
func Connect(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"host": cfg.Host,
		"db":   cfg.DBName,
	}).Info("Successfully connected to database")

	return &DB{DB: sqlDB}, nil
}

// Health проверяет доступность базы данных
func (db *DB) Health() error {
	if db == nil || db.DB == nil {
		return errors.New("database is not initialized")
	}
	return db.Ping()
}

// Close закрывает пул соединений
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// migrations применяются по порядку в одной транзакции; каждая идемпотентна.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS passages (
		id UUID PRIMARY KEY,
		plate VARCHAR(16) NOT NULL,
		vehicle_type VARCHAR(32) NOT NULL,
		gantry_id VARCHAR(64) NOT NULL DEFAULT '',
		passed_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_passages_plate_passed_at ON passages (plate, passed_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_passages_gantry ON passages (plate, gantry_id, passed_at)`,
}

// Migrate создаёт схему passages, если её ещё нет
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
