package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// OpenPostgres открывает пул соединений с PostgreSQL (драйвер pgx),
// применяет настройки пула и проверяет доступность базы (Ping).
//
// Закрытие *sql.DB — ответственность вызывающего.
func OpenPostgres(ctx context.Context, cfg DBConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Error("error to connect db", zap.Error(err))
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		log.Error("error check db connection", zap.Error(err))
		db.Close()
		return nil, err
	}

	return db, nil
}

// newMigrator создаёт golang-migrate поверх уже открытого *sql.DB.
func newMigrator(db *sql.DB, path string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance(path, "postgres", driver)
}

// MigrateUp применяет все миграции из path (например file://migrations/postgres).
//
// Если миграции уже применены, migrate.ErrNoChange не считается ошибкой.
func MigrateUp(db *sql.DB, path string, log *logger.Logger) error {
	m, err := newMigrator(db, path)
	if err != nil {
		log.Error("error creating migrations", zap.Error(err))
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error("error applying migrations", zap.Error(err))
		return err
	}

	version, dirty, _ := m.Version()
	log.Info("migrations applied successfully", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// MigrateDown откатывает steps последних миграций.
func MigrateDown(db *sql.DB, path string, steps int, log *logger.Logger) error {
	m, err := newMigrator(db, path)
	if err != nil {
		log.Error("error creating migrations", zap.Error(err))
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error("error rolling back migrations", zap.Error(err))
		return err
	}

	log.Info("migrations rolled back", zap.Int("steps", steps))
	return nil
}
