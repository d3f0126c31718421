package catalog

import (
	"context"
	"errors"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

var (
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Repository defines the catalog data operations the service consumes.
type Repository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListItems(ctx context.Context, activeOnly bool) ([]*domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	CreateItem(ctx context.Context, item *domain.MenuItem) error
	UpdateItem(ctx context.Context, item *domain.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
}
