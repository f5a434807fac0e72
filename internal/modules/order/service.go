package order

import (
	"context"
	"errors"

	"markethub/internal/domain"
	"markethub/internal/repository"
)

type Service struct {
	orders   OrderRepositoryInterface
	products ProductGetter
}

func NewService(orders OrderRepositoryInterface, products ProductGetter) *Service {
	return &Service{orders: orders, products: products}
}

// transitions is the order status machine. Cancellation is only open while
// nothing has shipped.
var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:   {domain.OrderConfirmed, domain.OrderCancelled},
	domain.OrderConfirmed: {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped:   {domain.OrderDelivered},
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Create validates every requested variant, then hands the repository the
// order to place atomically. Unit prices come from the product rows at
// order time, never from the request.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateOrderRequest) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if !p.HasColor(in.Color) || !p.HasSize(in.Size) {
			return nil, ErrVariantUnavailable
		}

		items = append(items, domain.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Color:     in.Color,
			Size:      in.Size,
		})
	}

	o := &domain.Order{
		CustomerID:       customerID,
		DeliveryLocation: req.DeliveryLocation,
		Items:            items,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, userID int64, role domain.UserRole, id int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !s.participant(o, userID, role) {
		return nil, ErrNotParticipant
	}
	return o, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *Service) ListForRetailer(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	return s.orders.ListBySeller(ctx, sellerID)
}

// UpdateStatus applies one transition. Retailers with a product in the
// order drive fulfilment; the customer may only cancel a pending order.
func (s *Service) UpdateStatus(ctx context.Context, userID int64, role domain.UserRole, id int64, req UpdateStatusRequest) (*domain.Order, error) {
	to := domain.OrderStatus(req.Status)

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	switch {
	case role == domain.RoleRetailer && o.HasSeller(userID):
		// fulfilment side
	case o.CustomerID == userID:
		if to != domain.OrderCancelled || o.Status != domain.OrderPending {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, ErrNotParticipant
	}

	if !transitionAllowed(o.Status, to) {
		return nil, ErrInvalidTransition
	}
	return s.orders.UpdateStatus(ctx, id, to)
}

func (s *Service) participant(o *domain.Order, userID int64, role domain.UserRole) bool {
	if o.CustomerID == userID {
		return true
	}
	return role == domain.RoleRetailer && o.HasSeller(userID)
}
