package notify

import (
	"fmt"
	"strings"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

// Compose renders the order summary sent to the customer and the admin chat.
// Pure function of its inputs: same order and count, same text.
//
// All amounts are kopecks and divide by 100 only here. The item line format
// is "<name> <price>₽ × <qty> − <line total>₽".
func Compose(order *domain.Order, orderCount int) string {
	var b strings.Builder

	b.WriteString("🎉 New order!\n\n")
	fmt.Fprintf(&b, "Order: #%s\n", shortID(order.ID.String()))
	fmt.Fprintf(&b, "Date: %s\n", order.CreatedAt.Format("02.01.06 15:04"))
	fmt.Fprintf(&b, "Phone: %s\n", order.PhoneNumber)
	fmt.Fprintf(&b, "Payment: %s\n", paymentLabel(order.PaymentMethod))
	fmt.Fprintf(&b, "Delivery: %s\n", deliveryLabel(order.DeliveryType))

	if order.DeliveryType == domain.DeliveryTypeDelivery {
		fmt.Fprintf(&b, "Address: %s\n", order.DeliveryAddress)
	}
	if order.PaymentMethod == domain.PaymentMethodCash && order.CashChangeFrom != "" {
		fmt.Fprintf(&b, "Change from: %s₽\n", order.CashChangeFrom)
	}

	fmt.Fprintf(&b, "Utensils: %d\n", order.UtensilsCount)
	if order.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", order.Comment)
	}

	b.WriteString("\n")
	for _, item := range order.Items {
		lineTotal := item.Price * int64(item.Quantity)
		fmt.Fprintf(&b, "%s %d₽ × %d − %d₽\n", item.Name, item.Price/100, item.Quantity, lineTotal/100)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Items: %d₽\n", (order.TotalAmount-order.DeliveryFee)/100)
	fmt.Fprintf(&b, "Delivery: %d₽\n", order.DeliveryFee/100)
	fmt.Fprintf(&b, "Total: %d₽\n", order.TotalAmount/100)

	fmt.Fprintf(&b, "\nTotal orders: %d", orderCount)

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func paymentLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentMethodCash:
		return "Cash"
	case domain.PaymentMethodTransfer:
		return "Transfer"
	}
	return string(m)
}

func deliveryLabel(t domain.DeliveryType) string {
	switch t {
	case domain.DeliveryTypeDelivery:
		return "Delivery"
	case domain.DeliveryTypePickup:
		return "Pickup"
	}
	return string(t)
}
