package cart

import (
	"context"
	"errors"
	"log"
)

// Ledger holds the line sequence for one user's session. The in-memory slice
// is authoritative; every mutation writes through to the slot synchronously,
// and a failed write is logged without failing the mutation.
type Ledger struct {
	store Store
	key   string
	lines []Line
}

// Restore reads the slot and builds a ledger from it. An empty or malformed
// slot yields an empty ledger; the only operation allowed to silently
// discard data.
func Restore(ctx context.Context, store Store, key string) *Ledger {
	l := &Ledger{store: store, key: key}

	lines, err := store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			log.Printf("cart restore failed for %s, starting empty: %v", key, err)
		}
		return l
	}

	l.lines = lines
	return l
}

// AddItem accumulates quantity onto an existing line for the same menu item,
// or appends a new line at the end. Non-positive quantity counts as 1.
func (l *Ledger) AddItem(ctx context.Context, item Line) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	for i := range l.lines {
		if l.lines[i].Item.ID == item.Item.ID {
			l.lines[i].Quantity += item.Quantity
			l.persist(ctx)
			return
		}
	}

	l.lines = append(l.lines, item)
	l.persist(ctx)
}

// RemoveItem deletes the line for the given menu item id. Absent id is a
// no-op, not an error.
func (l *Ledger) RemoveItem(ctx context.Context, itemID string) {
	for i := range l.lines {
		if l.lines[i].Item.ID == itemID {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			l.persist(ctx)
			return
		}
	}
}

// UpdateQuantity overwrites the quantity of an existing line. Quantity <= 0
// removes the line entirely. Absent id is a no-op.
func (l *Ledger) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity <= 0 {
		l.RemoveItem(ctx, itemID)
		return
	}

	for i := range l.lines {
		if l.lines[i].Item.ID == itemID {
			l.lines[i].Quantity = quantity
			l.persist(ctx)
			return
		}
	}
}

func (l *Ledger) Clear(ctx context.Context) {
	l.lines = nil
	l.persist(ctx)
}

// ItemCount is the sum of line quantities, recomputed on every call.
func (l *Ledger) ItemCount() int {
	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// TotalAmount is the sum of price*quantity over lines, in kopecks,
// recomputed on every call.
func (l *Ledger) TotalAmount() int64 {
	var total int64
	for _, line := range l.lines {
		total += line.Item.Price * int64(line.Quantity)
	}
	return total
}

func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Lines returns a copy of the line sequence in insertion order.
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Ledger) persist(ctx context.Context) {
	if err := l.store.Save(ctx, l.key, l.lines); err != nil {
		log.Printf("cart persist failed for %s: %v", l.key, err)
	}
}
