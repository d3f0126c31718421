package cart

import (
	"context"
	"errors"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

// Line is one (menu item, quantity) entry. The item is snapshotted into the
// line so totals survive menu edits within a session.
type Line struct {
	Item     domain.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

// Store is the durable slot a ledger writes through to. One slot per user,
// full line sequence per write.
type Store interface {
	Load(ctx context.Context, key string) ([]Line, error)
	Save(ctx context.Context, key string, lines []Line) error
	Delete(ctx context.Context, key string) error
}

var ErrSlotEmpty = errors.New("cart slot is empty")
