package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusReady      OrderStatus = "ready"
)

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// OrderItem snapshots the menu item name and unit price at order time, so
// later menu edits never rewrite order history.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

type Order struct {
	ID              uuid.UUID     `json:"id"`
	UserID          int64         `json:"user_id"`
	Status          OrderStatus   `json:"status"`
	DeliveryType    DeliveryType  `json:"delivery_type"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	PhoneNumber     string        `json:"phone_number"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	CashChangeFrom  string        `json:"cash_change_from,omitempty"`
	UtensilsCount   int           `json:"utensils_count"`
	Comment         string        `json:"comment,omitempty"`
	TotalAmount     int64         `json:"total_amount"` // kopecks, delivery fee included
	DeliveryFee     int64         `json:"delivery_fee"` // kopecks, 0 for pickup
	Items           []OrderItem   `json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
