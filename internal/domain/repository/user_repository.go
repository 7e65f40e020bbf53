package repository

import (
	"context"
	"errors"

	"github.com/platewise/recipebox/internal/domain/entity"
)

// ErrNotFound is returned when a row does not exist or is owned by another
// user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email that
// already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
