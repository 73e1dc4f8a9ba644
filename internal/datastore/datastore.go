// Package datastore owns durable persistence: a SQLite database accessed
// through GORM, the entity schema, and per-aggregate repositories. All
// cross-component coordination happens through this store's transactions;
// no component shares mutable in-memory state with another.
package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/datastore/repository"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the database handle and hands out repositories. A Store
// obtained from Transaction is bound to that transaction, so repositories
// created from it participate in the same atomic unit.
type Store struct {
	db  *gorm.DB
	log logger.Logger
}

// Open opens (creating if needed) the SQLite database at path, applies the
// schema, and returns a ready Store. Use ":memory:" or a file: DSN for
// tests. WAL mode and a busy timeout are set on the connection so the
// supervisor's background writes and API reads coexist.
func Open(path string, log logger.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is empty")
	}

	dsn := path
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&entities.User{},
		&entities.Rule{},
		&entities.Alert{},
		&entities.AuditLog{},
		&entities.NotificationQueueEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection: %w", err)
	}
	return sqlDB.Close()
}

// DB exposes the raw handle for callers that need it (tests, migrations).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Alerts returns an alert repository bound to this store's handle.
func (s *Store) Alerts() repository.AlertRepository {
	return repository.NewAlertRepository(s.db)
}

// Rules returns a rule repository bound to this store's handle.
func (s *Store) Rules() repository.RuleRepository {
	return repository.NewRuleRepository(s.db)
}

// Audit returns an audit repository bound to this store's handle.
func (s *Store) Audit() repository.AuditRepository {
	return repository.NewAuditRepository(s.db)
}

// Queue returns a notification queue repository bound to this store's handle.
func (s *Store) Queue() repository.QueueRepository {
	return repository.NewQueueRepository(s.db)
}

// Users returns a user repository bound to this store's handle.
func (s *Store) Users() repository.UserRepository {
	return repository.NewUserRepository(s.db)
}

// Transaction runs fn inside one database transaction. The Store passed to
// fn is bound to that transaction; repositories created from it all commit
// or roll back together. Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// SeedAdmin creates an admin user with the given username and email if no
// user with either exists yet. A blank username or email disables seeding.
func (s *Store) SeedAdmin(ctx context.Context, username, email string) error {
	if username == "" || email == "" {
		return nil
	}

	users := s.Users()
	if _, err := users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	admin := &entities.User{
		Username: username,
		Email:    email,
		Name:     username,
		Role:     "admin",
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("seeded admin user",
		logger.Uint64("id", uint64(admin.ID)),
		logger.String("username", username))
	return nil
}
