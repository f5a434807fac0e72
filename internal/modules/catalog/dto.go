package catalog

import (
	"time"

	"markethub/internal/domain"
)

type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Price          float64         `json:"price" binding:"required,gt=0"`
	Images         []string        `json:"images"`
	Category       string          `json:"category" binding:"required"`
	Colors         []string        `json:"colors"`
	Sizes          []string        `json:"sizes"`
	Stock          int             `json:"stock" binding:"gte=0"`
	DeliveryTime   string          `json:"delivery_time"`
	PaymentOptions []string        `json:"payment_options"`
	Location       domain.Location `json:"location"`
}

type UpdateProductRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Price          float64         `json:"price" binding:"required,gt=0"`
	Images         []string        `json:"images"`
	Category       string          `json:"category" binding:"required"`
	Colors         []string        `json:"colors"`
	Sizes          []string        `json:"sizes"`
	Stock          int             `json:"stock" binding:"gte=0"`
	DeliveryTime   string          `json:"delivery_time"`
	PaymentOptions []string        `json:"payment_options"`
	Promoted       bool            `json:"promoted"`
	Location       domain.Location `json:"location"`
}

type AvailabilityInput struct {
	Date      time.Time `json:"date" binding:"required"`
	TimeSlots []string  `json:"time_slots" binding:"required,min=1"`
}

type CreateServiceRequest struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	Price        float64             `json:"price" binding:"required,gt=0"`
	Duration     int                 `json:"duration" binding:"required,gt=0"`
	Category     string              `json:"category" binding:"required"`
	Location     domain.Location     `json:"location"`
	Availability []AvailabilityInput `json:"availability"`
}

type UpdateServiceRequest struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	Price        float64             `json:"price" binding:"required,gt=0"`
	Duration     int                 `json:"duration" binding:"required,gt=0"`
	Category     string              `json:"category" binding:"required"`
	Location     domain.Location     `json:"location"`
	Availability []AvailabilityInput `json:"availability"`
}
