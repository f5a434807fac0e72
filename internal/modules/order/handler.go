package order

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"markethub/internal/domain"
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
	authed := rg.Group("", middleware.JWTAuth(jwtService, sessions))
	authed.POST("/orders", h.Create)
	authed.GET("/orders", h.ListMine)
	authed.GET("/orders/:id", h.Get)
	authed.PATCH("/orders/:id/status", h.UpdateStatus)

	retailer := authed.Group("", middleware.RequireRole(string(domain.RoleRetailer)))
	retailer.GET("/retailer/orders", h.ListForRetailer)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	o, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ordered product not found")
		case ErrVariantUnavailable:
			response.Error(c, http.StatusBadRequest, "VARIANT_UNAVAILABLE", "Requested color or size is not offered")
		case ErrInsufficientStock:
			response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for the requested quantity")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		}
		return
	}

	response.Success(c, http.StatusCreated, o)
}

func (h *Handler) ListMine(c *gin.Context) {
	orders, err := h.service.ListForCustomer(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
		return
	}
	response.Success(c, http.StatusOK, orders)
}

func (h *Handler) ListForRetailer(c *gin.Context) {
	orders, err := h.service.ListForRetailer(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
		return
	}
	response.Success(c, http.StatusOK, orders)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, o)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrOrderNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	case ErrNotParticipant:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not part of this order")
	case ErrInvalidTransition:
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Status change not allowed")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
	}
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
		return 0, false
	}
	return id, true
}
