package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"markethub/internal/middleware"
	"markethub/internal/pkg/jwt"
	"markethub/internal/pkg/response"
	"markethub/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, jwtService *jwt.Service, sessions *session.Manager) {
	rg.GET("/products/:id/reviews", h.ListForProduct)
	rg.GET("/services/:id/reviews", h.ListForService)

	authed := rg.Group("", middleware.JWTAuth(jwtService, sessions))
	authed.POST("/reviews", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rv, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrInvalidTarget:
			response.Error(c, http.StatusBadRequest, "INVALID_TARGET", "Review must target exactly one of product_id or service_id")
		case ErrTargetNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Review target not found")
		case ErrAlreadyReviewed:
			response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "You already reviewed this listing")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review")
		}
		return
	}

	response.Success(c, http.StatusCreated, rv)
}

func (h *Handler) ListForProduct(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) ListForService(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) list(c *gin.Context, product bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	var reviews any
	if product {
		reviews, err = h.service.ListByProduct(c.Request.Context(), id)
	} else {
		reviews, err = h.service.ListByService(c.Request.Context(), id)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reviews")
		return
	}
	response.Success(c, http.StatusOK, reviews)
}
