package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"agora/internal/middleware"

	"gorm.io/gorm"
)

// ErrMigrationNotApplied is returned when rolling back a version that was never applied.
var ErrMigrationNotApplied = errors.New("migration has not been applied")

// MigrationStore records applied SQL migrations in the migration_logs table.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, m Migration) error
	RevertMigration(ctx context.Context, m Migration) error
}

// MigrationLog is one row of migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string { return "migration_logs" }

type migrationStore struct {
	db *gorm.DB
}

func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

// GetAppliedMigrations lists applied versions ascending. A database that has
// never been migrated has no log table and yields an empty list.
func (s *migrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	versions := []int{}
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version").Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case noLogTable(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
}

// noLogTable matches the missing-relation errors of PostgreSQL and SQLite.
func noLogTable(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "no such table") {
		return true
	}
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// ApplyMigration executes the up script and logs the version atomically.
func (s *migrationStore) ApplyMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, m, "up", m.UpScript, func(tx *gorm.DB) error {
		return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
	})
}

// RevertMigration executes the down script and drops the log row atomically.
func (s *migrationStore) RevertMigration(ctx context.Context, m Migration) error {
	return s.inTx(ctx, m, "down", m.DownScript, func(tx *gorm.DB) error {
		return tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error
	})
}

func (s *migrationStore) inTx(ctx context.Context, m Migration, dir, script string, record func(*gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(script).Error; err != nil {
			return fmt.Errorf("%s script: %w", dir, err)
		}
		if err := record(tx); err != nil {
			return fmt.Errorf("migration_logs: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migration %s %s: %w", m, dir, err)
	}
	middleware.Logger.InfoContext(ctx, "migration "+dir, "version", m.Version, "name", m.Name)
	return nil
}

// RunMigrations applies every embedded migration not yet in migration_logs.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, db, GetMigrations())
}

func runMigrations(ctx context.Context, db *gorm.DB, registered []Migration) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("create migration_logs: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := checkKnownVersions(applied, registered); err != nil {
		return err
	}

	for _, m := range pendingMigrations(applied, registered) {
		if err := store.ApplyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// checkKnownVersions refuses to run when the database carries versions this
// binary does not ship, which usually means an older build against a newer schema.
func checkKnownVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, v := range applied {
		known := slices.ContainsFunc(registered, func(m Migration) bool { return m.Version == v })
		if !known {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs has versions this build does not know: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// RollbackMigration reverts one applied migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return rollbackMigration(ctx, db, GetMigrations(), version)
}

func rollbackMigration(ctx context.Context, db *gorm.DB, registered []Migration, version int) error {
	i := slices.IndexFunc(registered, func(m Migration) bool { return m.Version == version })
	if i < 0 {
		return fmt.Errorf("no migration with version %d", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("%w: %d", ErrMigrationNotApplied, version)
	}
	return store.RevertMigration(ctx, registered[i])
}
