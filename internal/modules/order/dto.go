package order

import "markethub/internal/domain"

type OrderItemInput struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type CreateOrderRequest struct {
	Items            []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryLocation domain.Location  `json:"delivery_location"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
