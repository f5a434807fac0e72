package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type ProductRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewProductRepository(db *gorm.DB, bus *feed.Bus) *ProductRepository {
	return &ProductRepository{db: db, bus: bus}
}

type productModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	Name           string    `gorm:"column:name"`
	Description    string    `gorm:"column:description"`
	Price          float64   `gorm:"column:price"`
	Images         string    `gorm:"column:images"`
	Category       string    `gorm:"column:category;index"`
	Colors         string    `gorm:"column:colors"`
	Sizes          string    `gorm:"column:sizes"`
	Stock          int       `gorm:"column:stock"`
	SellerID       int64     `gorm:"column:seller_id;index"`
	DeliveryTime   string    `gorm:"column:delivery_time"`
	PaymentOptions string    `gorm:"column:payment_options"`
	Rating         float64   `gorm:"column:rating"`
	ReviewCount    int       `gorm:"column:review_count"`
	Promoted       bool      `gorm:"column:promoted"`
	City           string    `gorm:"column:location_city"`
	Area           string    `gorm:"column:location_area"`
	Address        string    `gorm:"column:location_address"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

func toDomainProduct(m productModel) *domain.Product {
	return &domain.Product{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		Images:         unmarshalStrings(m.Images),
		Category:       m.Category,
		Colors:         unmarshalStrings(m.Colors),
		Sizes:          unmarshalStrings(m.Sizes),
		Stock:          m.Stock,
		SellerID:       m.SellerID,
		DeliveryTime:   m.DeliveryTime,
		PaymentOptions: unmarshalStrings(m.PaymentOptions),
		Rating:         m.Rating,
		ReviewCount:    m.ReviewCount,
		Promoted:       m.Promoted,
		Location: domain.Location{
			City:    m.City,
			Area:    m.Area,
			Address: m.Address,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toProductModel(p *domain.Product) productModel {
	return productModel{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Images:         marshalStrings(p.Images),
		Category:       p.Category,
		Colors:         marshalStrings(p.Colors),
		Sizes:          marshalStrings(p.Sizes),
		Stock:          p.Stock,
		SellerID:       p.SellerID,
		DeliveryTime:   p.DeliveryTime,
		PaymentOptions: marshalStrings(p.PaymentOptions),
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		Promoted:       p.Promoted,
		City:           p.Location.City,
		Area:           p.Location.Area,
		Address:        p.Location.Address,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// applyCatalogFilters compiles the shared listing criteria to SQL. The
// predicates mirror domain.SearchFilters.MatchProduct so live views and
// listings agree on what qualifies.
func applyCatalogFilters(tx *gorm.DB, f domain.SearchFilters, withStock bool) *gorm.DB {
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" && f.Category != domain.CategoryAll {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.PriceMin != nil {
		tx = tx.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		tx = tx.Where("price <= ?", *f.PriceMax)
	}
	if f.RatingMin != nil {
		tx = tx.Where("rating >= ?", *f.RatingMin)
	}
	if withStock && f.InStock {
		tx = tx.Where("stock > 0")
	}
	return tx.Order(sortClause(f.Sort))
}

func sortClause(key domain.SortKey) string {
	switch key {
	case domain.SortPriceAsc:
		return "price ASC"
	case domain.SortPriceDesc:
		return "price DESC"
	case domain.SortRating:
		return "rating DESC"
	case domain.SortPopularity:
		return "review_count DESC"
	default:
		return "created_at DESC"
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m := toProductModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return normalize(err)
	}
	*p = *toDomainProduct(m)

	r.bus.Publish(feed.Event{Table: feed.TableProducts, Type: feed.EventInsert, ID: p.ID, Row: p})
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m productModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}

	p := toDomainProduct(m)
	if seller, err := loadUser(ctx, r.db, p.SellerID); err == nil {
		p.Seller = seller
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, f domain.SearchFilters) ([]*domain.Product, error) {
	var models []productModel
	tx := applyCatalogFilters(r.db.WithContext(ctx).Model(&productModel{}), f, true)
	if err := tx.Find(&models).Error; err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Product, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainProduct(m))
	}
	return out, nil
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*domain.Product, error) {
	var models []productModel
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Product, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainProduct(m))
	}
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	m := toProductModel(p)
	m.UpdatedAt = time.Now()

	tx := r.db.WithContext(ctx).Model(&productModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"name":             m.Name,
		"description":      m.Description,
		"price":            m.Price,
		"images":           m.Images,
		"category":         m.Category,
		"colors":           m.Colors,
		"sizes":            m.Sizes,
		"stock":            m.Stock,
		"delivery_time":    m.DeliveryTime,
		"payment_options":  m.PaymentOptions,
		"promoted":         m.Promoted,
		"location_city":    m.City,
		"location_area":    m.Area,
		"location_address": m.Address,
		"updated_at":       m.UpdatedAt,
	})
	if tx.Error != nil {
		return normalize(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = m.UpdatedAt

	r.bus.Publish(feed.Event{Table: feed.TableProducts, Type: feed.EventUpdate, ID: p.ID, Row: p})
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&productModel{}, id)
	if tx.Error != nil {
		return normalize(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	r.bus.Publish(feed.Event{Table: feed.TableProducts, Type: feed.EventDelete, ID: id})
	return nil
}

// loadUser fetches one user for relation embedding. Missing users are not
// an error for the caller, listings must not 500 over a deleted account.
func loadUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var m userModel
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, normalize(err)
	}
	return toDomainUser(m), nil
}
