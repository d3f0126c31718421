package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderReader is the slice of the order store the notifier needs.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	CountOrdersByUserID(ctx context.Context, userID int64) (int, error)
}

// Consumer turns order-placed events into Telegram messages for the placing
// user and the admin chat. It re-reads the order from the database so the
// rendered text always reflects the persisted record.
type Consumer struct {
	orders      OrderReader
	dispatcher  *Dispatcher
	adminChatID int64
	reader      *kafka.Reader
}

func NewConsumer(orders OrderReader, dispatcher *Dispatcher, adminChatID int64, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    order.PlacedTopic,
		GroupID:  "notifier",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		orders:      orders,
		dispatcher:  dispatcher,
		adminChatID: adminChatID,
		reader:      reader,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	var event order.PlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	c.Notify(ctx, event)
}

// Notify composes and dispatches the summary for one placed order. Every
// failure here is diagnostic only; the order already stands.
func (c *Consumer) Notify(ctx context.Context, event order.PlacedEvent) {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.Printf("invalid order_id %q: %v", event.OrderID, err)
		return
	}

	o, err := c.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		log.Printf("failed to load order %s: %v", event.OrderID, err)
		return
	}

	count, err := c.orders.CountOrdersByUserID(ctx, o.UserID)
	if err != nil {
		log.Printf("failed to count orders for user %d: %v", o.UserID, err)
		// The closing line shows 0; still worth sending the rest.
	}

	text := Compose(o, count)

	recipients := []int64{o.UserID}
	if c.adminChatID != 0 {
		recipients = append(recipients, c.adminChatID)
	}
	c.dispatcher.Dispatch(ctx, text, recipients)
}
