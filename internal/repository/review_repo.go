package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"markethub/internal/domain"
	"markethub/internal/feed"
)

type ReviewRepository struct {
	db  *gorm.DB
	bus *feed.Bus
}

func NewReviewRepository(db *gorm.DB, bus *feed.Bus) *ReviewRepository {
	return &ReviewRepository{db: db, bus: bus}
}

type reviewModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex:idx_one_product_review;uniqueIndex:idx_one_service_review"`
	ProductID *int64    `gorm:"column:product_id;index;uniqueIndex:idx_one_product_review"`
	ServiceID *int64    `gorm:"column:service_id;index;uniqueIndex:idx_one_service_review"`
	Rating    int       `gorm:"column:rating"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func toDomainReview(m reviewModel) *domain.Review {
	return &domain.Review{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		ServiceID: m.ServiceID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

// Create inserts the review and recomputes the target's rating aggregate in
// the same transaction, then surfaces the new aggregate as a product or
// service update on the feed.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := reviewModel{
			UserID:    rv.UserID,
			ProductID: rv.ProductID,
			ServiceID: rv.ServiceID,
			Rating:    rv.Rating,
			Comment:   rv.Comment,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*rv = *toDomainReview(m)

		if rv.ProductID != nil {
			return recomputeAggregate(tx, "products", "product_id", *rv.ProductID)
		}
		return recomputeAggregate(tx, "services", "service_id", *rv.ServiceID)
	})
	if err != nil {
		return normalize(err)
	}

	r.publishTarget(ctx, rv)
	return nil
}

// recomputeAggregate rewrites rating and review_count on the target row
// from the review table, so the stored aggregate can never drift.
func recomputeAggregate(tx *gorm.DB, table, fk string, targetID int64) error {
	q := `
UPDATE ` + table + `
SET rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE ` + fk + ` = ?), 0),
    review_count = (SELECT COUNT(1) FROM reviews WHERE ` + fk + ` = ?),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`
	return tx.Exec(q, targetID, targetID, targetID).Error
}

func (r *ReviewRepository) publishTarget(ctx context.Context, rv *domain.Review) {
	if rv.ProductID != nil {
		var m productModel
		if err := r.db.WithContext(ctx).First(&m, *rv.ProductID).Error; err == nil {
			p := toDomainProduct(m)
			r.bus.Publish(feed.Event{Table: feed.TableProducts, Type: feed.EventUpdate, ID: p.ID, Row: p})
		}
		return
	}
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, *rv.ServiceID).Error; err == nil {
		s := toDomainService(m)
		r.bus.Publish(feed.Event{Table: feed.TableServices, Type: feed.EventUpdate, ID: s.ID, Row: s})
	}
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return r.list(ctx, "product_id = ?", productID)
}

func (r *ReviewRepository) ListByService(ctx context.Context, serviceID int64) ([]*domain.Review, error) {
	return r.list(ctx, "service_id = ?", serviceID)
}

func (r *ReviewRepository) list(ctx context.Context, cond string, id int64) ([]*domain.Review, error) {
	var models []reviewModel
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, normalize(err)
	}

	out := make([]*domain.Review, 0, len(models))
	for _, m := range models {
		rv := toDomainReview(m)
		if u, err := loadUser(ctx, r.db, rv.UserID); err == nil {
			rv.User = u
		}
		out = append(out, rv)
	}
	return out, nil
}
