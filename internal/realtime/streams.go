package realtime

import (
	"context"
	"errors"

	"markethub/internal/domain"
	"markethub/internal/feed"
	"markethub/internal/session"
)

var ErrUnknownTable = errors.New("unknown table")

type ProductLister interface {
	List(ctx context.Context, f domain.SearchFilters) ([]*domain.Product, error)
}

type ServiceLister interface {
	List(ctx context.Context, f domain.SearchFilters) ([]*domain.Service, error)
}

type OrderLister interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error)
}

type BookingLister interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64) ([]*domain.Booking, error)
}

type MessageLister interface {
	ListForUser(ctx context.Context, userID int64) ([]*domain.Message, error)
}

// Streams resolves a subscription request to its initial snapshot and the
// predicate deciding which later deltas belong to it. Products and services
// are public and filterable; orders, bookings and messages are scoped to
// the subscriber, so a user only ever streams rows they participate in.
type Streams struct {
	products ProductLister
	services ServiceLister
	orders   OrderLister
	bookings BookingLister
	messages MessageLister
}

func NewStreams(products ProductLister, services ServiceLister, orders OrderLister, bookings BookingLister, messages MessageLister) *Streams {
	return &Streams{
		products: products,
		services: services,
		orders:   orders,
		bookings: bookings,
		messages: messages,
	}
}

func (s *Streams) Snapshot(ctx context.Context, sess session.Session, table string, f domain.SearchFilters) ([]feed.Row, error) {
	switch table {
	case feed.TableProducts:
		list, err := s.products.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return rowsOf(list), nil

	case feed.TableServices:
		list, err := s.services.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return rowsOf(list), nil

	case feed.TableOrders:
		own, err := s.orders.ListByCustomer(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		if sess.Role != domain.RoleRetailer {
			return rowsOf(own), nil
		}
		// A retailer streams both sides: orders they placed and orders
		// containing their products.
		sold, err := s.orders.ListBySeller(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		return mergeRows(rowsOf(own), rowsOf(sold)), nil

	case feed.TableBookings:
		own, err := s.bookings.ListByCustomer(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		if sess.Role != domain.RoleServiceProvider {
			return rowsOf(own), nil
		}
		held, err := s.bookings.ListByProvider(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		return mergeRows(rowsOf(own), rowsOf(held)), nil

	case feed.TableMessages:
		list, err := s.messages.ListForUser(ctx, sess.UserID)
		if err != nil {
			return nil, err
		}
		return rowsOf(list), nil
	}
	return nil, ErrUnknownTable
}

// Matcher builds the view predicate matching the snapshot's scope, so a
// delta is forwarded exactly when the row would have been in the snapshot.
func (s *Streams) Matcher(sess session.Session, table string, f domain.SearchFilters) (func(feed.Row) bool, error) {
	switch table {
	case feed.TableProducts:
		return func(r feed.Row) bool {
			p, ok := r.(*domain.Product)
			return ok && f.MatchProduct(p)
		}, nil

	case feed.TableServices:
		return func(r feed.Row) bool {
			sv, ok := r.(*domain.Service)
			return ok && f.MatchService(sv)
		}, nil

	case feed.TableOrders:
		return func(r feed.Row) bool {
			o, ok := r.(*domain.Order)
			if !ok {
				return false
			}
			if o.CustomerID == sess.UserID {
				return true
			}
			return sess.Role == domain.RoleRetailer && o.HasSeller(sess.UserID)
		}, nil

	case feed.TableBookings:
		return func(r feed.Row) bool {
			b, ok := r.(*domain.Booking)
			if !ok {
				return false
			}
			return b.CustomerID == sess.UserID || b.ProviderID == sess.UserID
		}, nil

	case feed.TableMessages:
		return func(r feed.Row) bool {
			m, ok := r.(*domain.Message)
			if !ok {
				return false
			}
			return m.SenderID == sess.UserID || m.RecipientID == sess.UserID
		}, nil
	}
	return nil, ErrUnknownTable
}

func rowsOf[T feed.Row](list []T) []feed.Row {
	out := make([]feed.Row, 0, len(list))
	for _, r := range list {
		out = append(out, r)
	}
	return out
}

// mergeRows concatenates two snapshots, dropping ids already seen. A
// retailer who bought their own product would otherwise stream the order
// twice.
func mergeRows(a, b []feed.Row) []feed.Row {
	seen := make(map[int64]struct{}, len(a))
	for _, r := range a {
		seen[r.RowID()] = struct{}{}
	}
	out := a
	for _, r := range b {
		if _, ok := seen[r.RowID()]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
