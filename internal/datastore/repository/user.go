package repository

import (
	"context"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// UserRepository handles operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	Get(ctx context.Context, id uint) (*entities.User, error)

	// FindByUsernameOrEmail returns the first user matching either value.
	// Returns ErrUserNotFound when no user matches.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.User, error)
}
