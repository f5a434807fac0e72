package chat

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"markethub/internal/middleware"
	"markethub/internal/pkg/jwt"
	"markethub/internal/pkg/response"
	"markethub/internal/session"
)

type Handler struct {
	service   *Service
	uploadDir string
	maxUpload int64
}

func NewHandler(service *Service, uploadDir string, maxUpload int64) *Handler {
	return &Handler{service: service, uploadDir: uploadDir, maxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, jwtService *jwt.Service, sessions *session.Manager) {
	chatGroup := rg.Group("/chat", middleware.JWTAuth(jwtService, sessions))
	{
		chatGroup.POST("/messages", h.Send)
		chatGroup.POST("/messages/upload", h.UploadImage)
		chatGroup.GET("/conversations", h.Conversations)
		chatGroup.GET("/conversations/:id/messages", h.History)
		chatGroup.POST("/messages/read", h.MarkRead)
		chatGroup.GET("/unread", h.UnreadCount)
	}
}

func (h *Handler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	msg, err := h.service.Send(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// UploadImage accepts a multipart image, stores it under the upload dir
// and sends it as an image message. jpg, jpeg, png and webp only.
func (h *Handler) UploadImage(c *gin.Context) {
	recipientID, err := strconv.ParseInt(c.PostForm("recipient_id"), 10, 64)
	if err != nil || recipientID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid recipient ID")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "Image file is required")
		return
	}

	if file.Size > h.maxUpload {
		response.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds %d MB limit", h.maxUpload/(1024*1024)))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowedExts[ext] {
		response.Error(c, http.StatusBadRequest, "INVALID_FORMAT", "Only jpg, jpeg, png, webp files are allowed")
		return
	}

	senderID := c.GetInt64("user_id")
	dir := filepath.Join(h.uploadDir, "chat", strconv.FormatInt(senderID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.Error(c, http.StatusInternalServerError, "MKDIR_FAILED", "Failed to create upload directory")
		return
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	savePath := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		response.Error(c, http.StatusInternalServerError, "SAVE_FAILED", "Failed to save uploaded file")
		return
	}

	imageURL := fmt.Sprintf("/static/chat/%d/%s", senderID, filename)
	msg, err := h.service.SendImage(c.Request.Context(), senderID, recipientID, imageURL)
	if err != nil {
		_ = os.Remove(savePath)
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) Conversations(c *gin.Context) {
	convs, err := h.service.Conversations(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list conversations")
		return
	}
	response.Success(c, http.StatusOK, convs)
}

func (h *Handler) History(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	msgs, err := h.service.History(c.Request.Context(), c.GetInt64("user_id"), otherID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load messages")
		return
	}
	response.Success(c, http.StatusOK, msgs)
}

func (h *Handler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), c.GetInt64("user_id"), req); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to mark messages read")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": true})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count unread messages")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrSelfMessage:
		response.Error(c, http.StatusBadRequest, "SELF_MESSAGE", "Cannot message yourself")
	case ErrRecipientNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipient not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send message")
	}
}
