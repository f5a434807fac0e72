package review

type CreateReviewRequest struct {
	ProductID *int64 `json:"product_id"`
	ServiceID *int64 `json:"service_id"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
