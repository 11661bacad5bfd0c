package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/pkg/response"
)

// Handler handles HTTP requests for file uploads.
// Any authenticated user can upload. Ownership is tracked by user_id.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", h.Upload)
		uploads.GET("/:id", h.GetByID)
	}
}

// Upload godoc
// @Summary Upload a file
// @Description Upload an image, audio clip, video or PDF. Returns file ID and public URL.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "no file provided")
		return
	}
	if fileHeader.Size > MaxFileSize {
		response.FromError(c, ErrFileTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer file.Close()

	up, err := h.service.Save(c.Request.Context(), c.GetInt64("user_id"), fileHeader.Filename, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":         up.ID,
		"url":        up.FileURL,
		"name":       up.OriginalName,
		"mime_type":  up.MimeType,
		"size":       up.Size,
		"created_at": up.CreatedAt,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	up, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"upload": up})
}
