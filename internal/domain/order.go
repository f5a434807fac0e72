package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID               int64       `json:"id"`
	CustomerID       int64       `json:"customer_id"`
	Total            float64     `json:"total"`
	Status           OrderStatus `json:"status"`
	DeliveryLocation Location    `json:"delivery_location"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	Customer *User       `json:"customer,omitempty"`
	Items    []OrderItem `json:"items"`
}

func (o Order) RowID() int64 { return o.ID }

// HasSeller reports whether any line item belongs to the given retailer.
// Items must be loaded with their products.
func (o *Order) HasSeller(sellerID int64) bool {
	for _, it := range o.Items {
		if it.Product != nil && it.Product.SellerID == sellerID {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`

	Product *Product `json:"product,omitempty"`
}
