package order

import (
	"context"
	"errors"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition  = errors.New("illegal transition of order status")
	ErrInactiveMenuItem   = errors.New("menu item is not available")
	ErrMissingPhoneNumber = errors.New("phone number is required")
)

type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
	CountOrdersByUserID(ctx context.Context, userID int64) (int, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
}
