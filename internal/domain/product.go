package domain

import "time"

type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Images         []string  `json:"images"`
	Category       string    `json:"category"`
	Colors         []string  `json:"colors"`
	Sizes          []string  `json:"sizes"`
	Stock          int       `json:"stock"`
	SellerID       int64     `json:"seller_id"`
	DeliveryTime   string    `json:"delivery_time"`
	PaymentOptions []string  `json:"payment_options"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"review_count"`
	Promoted       bool      `json:"promoted"`
	Location       Location  `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Loaded relations, not columns.
	Seller  *User    `json:"seller,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

func (p Product) RowID() int64 { return p.ID }

// HasColor reports whether the variant is offered; an empty variant list
// means the product has no color variants at all.
func (p *Product) HasColor(color string) bool {
	return containsVariant(p.Colors, color)
}

func (p *Product) HasSize(size string) bool {
	return containsVariant(p.Sizes, size)
}

func containsVariant(list []string, v string) bool {
	if v == "" {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
