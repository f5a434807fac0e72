package booking

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
	authed.POST("/bookings", h.Create)
	authed.GET("/bookings", h.ListMine)
	authed.GET("/bookings/:id", h.Get)
	authed.PATCH("/bookings/:id/status", h.UpdateStatus)

	provider := authed.Group("", middleware.RequireRole(string(domain.RoleServiceProvider)))
	provider.GET("/provider/bookings", h.ListForProvider)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch err {
		case ErrServiceNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
		case ErrSlotNotOffered:
			response.Error(c, http.StatusBadRequest, "SLOT_NOT_OFFERED", "Slot is outside the published availability")
		case ErrSlotTaken:
			response.Error(c, http.StatusConflict, "SLOT_TAKEN", "Slot is already booked")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) ListMine(c *gin.Context) {
	bookings, err := h.service.ListForCustomer(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, bookings)
}

func (h *Handler) ListForProvider(c *gin.Context) {
	bookings, err := h.service.ListForProvider(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, bookings)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrBookingNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case ErrNotParticipant:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not part of this booking")
	case ErrInvalidTransition:
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Status change not allowed")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update booking")
	}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}
