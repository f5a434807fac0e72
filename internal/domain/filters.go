package domain

import "strings"

type SortKey string

const (
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortNewest     SortKey = "newest"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
)

// CategoryAll is the catch-all category value sent by listing pages; it is
// treated the same as an absent category filter.
const CategoryAll = "All Categories"

// SearchFilters is the criteria object accepted by product and service
// listings. Repositories compile it to SQL; live views reuse the Match*
// predicates to decide event relevance, so both sides agree on semantics.
type SearchFilters struct {
	Query     string   `json:"query,omitempty" form:"query"`
	Category  string   `json:"category,omitempty" form:"category"`
	PriceMin  *float64 `json:"price_min,omitempty" form:"price_min"`
	PriceMax  *float64 `json:"price_max,omitempty" form:"price_max"`
	RatingMin *float64 `json:"rating_min,omitempty" form:"rating_min"`
	InStock   bool     `json:"in_stock,omitempty" form:"in_stock"`
	Sort      SortKey  `json:"sort,omitempty" form:"sort"`
}

func (f SearchFilters) MatchProduct(p *Product) bool {
	if p == nil {
		return false
	}
	if f.InStock && p.Stock <= 0 {
		return false
	}
	return f.matchCommon(p.Name, p.Description, p.Category, p.Price, p.Rating)
}

func (f SearchFilters) MatchService(s *Service) bool {
	if s == nil {
		return false
	}
	return f.matchCommon(s.Name, s.Description, s.Category, s.Price, s.Rating)
}

// matchCommon applies the independent predicates as one conjunction, so the
// result cannot depend on any application order.
func (f SearchFilters) matchCommon(name, description, category string, price, rating float64) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(name), q) &&
			!strings.Contains(strings.ToLower(description), q) {
			return false
		}
	}
	if f.Category != "" && f.Category != CategoryAll && f.Category != category {
		return false
	}
	if f.PriceMin != nil && price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && price > *f.PriceMax {
		return false
	}
	if f.RatingMin != nil && rating < *f.RatingMin {
		return false
	}
	return true
}
