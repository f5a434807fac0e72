package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type OrderRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewOrderRepository(db *gorm.DB, bus *feed.Bus) *OrderRepository {
	return &OrderRepository{db: db, bus: bus}
}

type orderModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	CustomerID int64     `gorm:"column:customer_id;index"`
	Total      float64   `gorm:"column:total"`
	Status     string    `gorm:"column:status"`
	City       string    `gorm:"column:delivery_city"`
	Area       string    `gorm:"column:delivery_area"`
	Address    string    `gorm:"column:delivery_address"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	OrderID   int64   `gorm:"column:order_id;index"`
	ProductID int64   `gorm:"column:product_id;index"`
	Quantity  int     `gorm:"column:quantity"`
	UnitPrice float64 `gorm:"column:unit_price"`
	Color     string  `gorm:"column:color"`
	Size      string  `gorm:"column:size"`
}

func (orderItemModel) TableName() string { return "order_items" }

func toDomainOrder(m orderModel) *domain.Order {
	return &domain.Order{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Total:      m.Total,
		Status:     domain.OrderStatus(m.Status),
		DeliveryLocation: domain.Location{
			City:    m.City,
			Area:    m.Area,
			Address: m.Address,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainOrderItem(m orderItemModel) domain.OrderItem {
	return domain.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Color:     m.Color,
		Size:      m.Size,
	}
}

// Create places the order in one transaction: every line decrements stock
// atomically, prices are snapshotted from the product row at order time and
// the stored total is recomputed from those snapshots. Any line failing the
// stock check aborts the whole order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	touched := make([]int64, 0, len(o.Items))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		for i := range o.Items {
			it := &o.Items[i]

			var pm productModel
			if err := tx.First(&pm, it.ProductID).Error; err != nil {
				return err
			}

			res := tx.Exec(
				"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
				it.Quantity, it.ProductID, it.Quantity,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}

			it.UnitPrice = pm.Price
			total += pm.Price * float64(it.Quantity)
			touched = append(touched, it.ProductID)
		}

		om := orderModel{
			CustomerID: o.CustomerID,
			Total:      total,
			Status:     string(domain.OrderPending),
			City:       o.DeliveryLocation.City,
			Area:       o.DeliveryLocation.Area,
			Address:    o.DeliveryLocation.Address,
		}
		if err := tx.Create(&om).Error; err != nil {
			return err
		}

		for i := range o.Items {
			im := orderItemModel{
				OrderID:   om.ID,
				ProductID: o.Items[i].ProductID,
				Quantity:  o.Items[i].Quantity,
				UnitPrice: o.Items[i].UnitPrice,
				Color:     o.Items[i].Color,
				Size:      o.Items[i].Size,
			}
			if err := tx.Create(&im).Error; err != nil {
				return err
			}
			o.Items[i].ID = im.ID
			o.Items[i].OrderID = om.ID
		}

		items := o.Items
		*o = *toDomainOrder(om)
		o.Items = items
		return nil
	})
	if err != nil {
		return normalize(err)
	}

	r.attachProducts(ctx, o)
	r.bus.Publish(feed.Event{Table: feed.TableOrders, Type: feed.EventInsert, ID: o.ID, Row: o})
	r.publishStock(ctx, touched)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}

	o := toDomainOrder(m)
	if err := r.attachItems(ctx, o); err != nil {
		return nil, err
	}
	r.attachProducts(ctx, o)
	return o, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	var models []orderModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}
	return r.expand(ctx, models)
}

// ListBySeller returns orders containing at least one of the retailer's
// products. The order still carries all of its items; scoping hides whole
// orders, not lines.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error) {
	var models []orderModel
	err := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Distinct("orders.*").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Order("orders.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}
	return r.expand(ctx, models)
}

// UpdateStatus writes the new status. Transition legality is the caller's
// business; cancellation restocks every line in the same transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":     string(status),
			"updated_at": now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if status != domain.OrderCancelled {
			return nil
		}
		var items []orderItemModel
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			err := tx.Exec(
				"UPDATE products SET stock = stock + ? WHERE id = ?",
				it.Quantity, it.ProductID,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, normalize(err)
	}

	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.bus.Publish(feed.Event{Table: feed.TableOrders, Type: feed.EventUpdate, ID: o.ID, Row: o})
	if status == domain.OrderCancelled {
		ids := make([]int64, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		r.publishStock(ctx, ids)
	}
	return o, nil
}

func (r *OrderRepository) expand(ctx context.Context, models []orderModel) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(models))
	for _, m := range models {
		o := toDomainOrder(m)
		if err := r.attachItems(ctx, o); err != nil {
			return nil, err
		}
		r.attachProducts(ctx, o)
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, o *domain.Order) error {
	var items []orderItemModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", o.ID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return normalize(err)
	}

	o.Items = make([]domain.OrderItem, 0, len(items))
	for _, im := range items {
		o.Items = append(o.Items, toDomainOrderItem(im))
	}
	return nil
}

// attachProducts embeds the product rows so retailers can be matched
// against the order. Missing products (deleted listings) are skipped.
func (r *OrderRepository) attachProducts(ctx context.Context, o *domain.Order) {
	for i := range o.Items {
		var pm productModel
		if err := r.db.WithContext(ctx).First(&pm, o.Items[i].ProductID).Error; err == nil {
			o.Items[i].Product = toDomainProduct(pm)
		}
	}
}

// publishStock emits product updates for rows whose stock changed inside an
// order transaction.
func (r *OrderRepository) publishStock(ctx context.Context, ids []int64) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		var m productModel
		if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
			continue
		}
		p := toDomainProduct(m)
		r.bus.Publish(feed.Event{Table: feed.TableProducts, Type: feed.EventUpdate, ID: p.ID, Row: p})
	}
}
