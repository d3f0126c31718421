package order

import (
	"context"
	"log"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/cart"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/google/uuid"
)

// CatalogReader is the slice of the catalog the checkout needs. Prices are
// re-read here so the database, not the client's cart snapshot, is the price
// authority.
type CatalogReader interface {
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
}

// CheckoutRequest carries everything the checkout form collects on top of
// the cart contents.
type CheckoutRequest struct {
	UserID          int64
	DeliveryType    domain.DeliveryType
	DeliveryAddress string
	PhoneNumber     string
	PaymentMethod   domain.PaymentMethod
	CashChangeFrom  string
	UtensilsCount   int
	Comment         string
}

type Service struct {
	repo        Repository
	catalog     CatalogReader
	publisher   Publisher
	cartStore   cart.Store
	deliveryFee int64 // kopecks, charged on delivery orders only
}

func NewService(repo Repository, catalog CatalogReader, publisher Publisher, cartStore cart.Store, deliveryFee int64) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		publisher:   publisher,
		cartStore:   cartStore,
		deliveryFee: deliveryFee,
	}
}

// PlaceOrder turns the user's cart into a persisted order. The order insert
// is the only step allowed to fail the call: event publish and cart-slot
// cleanup are best-effort side channels.
func (s *Service) PlaceOrder(ctx context.Context, ledger *cart.Ledger, req CheckoutRequest) (*domain.Order, error) {
	if ledger.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if req.PhoneNumber == "" {
		return nil, ErrMissingPhoneNumber
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Status:        domain.OrderStatusNew,
		DeliveryType:  req.DeliveryType,
		PhoneNumber:   req.PhoneNumber,
		PaymentMethod: req.PaymentMethod,
		UtensilsCount: req.UtensilsCount,
		Comment:       req.Comment,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if req.DeliveryType == domain.DeliveryTypeDelivery {
		order.DeliveryAddress = req.DeliveryAddress
		order.DeliveryFee = s.deliveryFee
	}
	if req.PaymentMethod == domain.PaymentMethodCash {
		order.CashChangeFrom = req.CashChangeFrom
	}

	var subtotal int64
	for _, line := range ledger.Lines() {
		item, err := s.catalog.GetItem(ctx, line.Item.ID)
		if err != nil {
			return nil, err
		}
		if !item.IsActive {
			return nil, ErrInactiveMenuItem
		}

		order.Items = append(order.Items, domain.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   line.Quantity,
		})
		subtotal += item.Price * int64(line.Quantity)
	}
	order.TotalAmount = subtotal + order.DeliveryFee

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPlaced(ctx, PlacedEvent{
		OrderID: order.ID.String(),
		UserID:  order.UserID,
	}); err != nil {
		log.Printf("publish placed event for order %s failed: %v", order.ID, err)
	}

	ledger.Clear(ctx)

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

func (s *Service) CountUserOrders(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountOrdersByUserID(ctx, userID)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.repo.ListOrdersByStatus(ctx, status)
}

// AdvanceStatus moves an order along new -> in_progress -> ready. Any other
// transition is rejected.
func (s *Service) AdvanceStatus(ctx context.Context, id uuid.UUID, to domain.OrderStatus) error {
	var from domain.OrderStatus
	switch to {
	case domain.OrderStatusInProgress:
		from = domain.OrderStatusNew
	case domain.OrderStatusReady:
		from = domain.OrderStatusInProgress
	default:
		return ErrIllegalTransition
	}

	return s.repo.UpdateStatus(ctx, id, from, to)
}
