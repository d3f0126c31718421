package notify

import (
	"context"
	"log"
)

// Sender delivers one rendered message to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch sends the same text to every recipient independently. A failed
// send is logged and never blocks or fails the remaining recipients;
// notification is a best-effort side channel, not a correctness path.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, recipients []int64) {
	for _, chatID := range recipients {
		if err := d.sender.Send(ctx, chatID, text); err != nil {
			log.Printf("notification send to %d failed: %v", chatID, err)
		}
	}
}
