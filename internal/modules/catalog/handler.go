package catalog

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
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/services", h.ListServices)
	rg.GET("/services/:id", h.GetService)

	retailer := rg.Group("",
		middleware.JWTAuth(jwtService, sessions),
		middleware.RequireRole(string(domain.RoleRetailer)))
	retailer.POST("/products", h.CreateProduct)
	retailer.PUT("/products/:id", h.UpdateProduct)
	retailer.DELETE("/products/:id", h.DeleteProduct)
	retailer.GET("/retailer/products", h.MyProducts)

	provider := rg.Group("",
		middleware.JWTAuth(jwtService, sessions),
		middleware.RequireRole(string(domain.RoleServiceProvider)))
	provider.POST("/services", h.CreateService)
	provider.PUT("/services/:id", h.UpdateService)
	provider.DELETE("/services/:id", h.DeleteService)
	provider.GET("/provider/services", h.MyServices)
}

func (h *Handler) ListProducts(c *gin.Context) {
	var f domain.SearchFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter parameters")
		return
	}

	products, err := h.service.ListProducts(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products")
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrProductNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load product")
		}
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product")
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.UpdateProduct(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeListingError(c, err, "product")
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeListingError(c, err, "product")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) MyProducts(c *gin.Context) {
	products, err := h.service.MyProducts(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products")
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) ListServices(c *gin.Context) {
	var f domain.SearchFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter parameters")
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list services")
		return
	}
	response.Success(c, http.StatusOK, services)
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sv, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrServiceNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load service")
		}
		return
	}
	response.Success(c, http.StatusOK, sv)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sv, err := h.service.CreateService(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create service")
		return
	}
	response.Success(c, http.StatusCreated, sv)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sv, err := h.service.UpdateService(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.writeListingError(c, err, "service")
		return
	}
	response.Success(c, http.StatusOK, sv)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeListingError(c, err, "service")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) MyServices(c *gin.Context) {
	services, err := h.service.MyServices(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list services")
		return
	}
	response.Success(c, http.StatusOK, services)
}

func (h *Handler) writeListingError(c *gin.Context, err error, kind string) {
	switch err {
	case ErrProductNotFound, ErrServiceNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case ErrNotOwner:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this "+kind)
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update "+kind)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return 0, false
	}
	return id, true
}
