package user

import (
	"context"
	"errors"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	// Upsert inserts the user or refreshes the profile fields Telegram sent.
	Upsert(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, telegramID int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// IsAdminUsername reports whether the username is in the admins table.
	IsAdminUsername(ctx context.Context, username string) (bool, error)
}
