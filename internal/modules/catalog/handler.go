package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	courses := rg.Group("/courses")
	{
		courses.POST("", h.CreateCourse)
		courses.GET("", h.ListCourses)
	}

	challenges := rg.Group("/challenges")
	{
		challenges.POST("", h.CreateChallenge)
		challenges.GET("", h.ListChallenges)
		challenges.POST("/:id/attempts", h.Attempt)
	}
}

// CreateCourse godoc
// @Summary      Publish a course
// @Tags         Catalog
// @Security     BearerAuth
// @Param        body body CreateCourseRequest true "Course"
// @Success      201 {object} domain.Course
// @Router       /courses [post]
func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

func (h *Handler) ListCourses(c *gin.Context) {
	var q CourseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}
	items, err := h.service.ListCourses(c.Request.Context(), order.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"courses": items})
}

func (h *Handler) CreateChallenge(c *gin.Context) {
	var req CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	ch, err := h.service.CreateChallenge(c.Request.Context(), order.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"challenge": ch})
}

func (h *Handler) ListChallenges(c *gin.Context) {
	items, err := h.service.ListChallenges(c.Request.Context(), c.Query("difficulty"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"challenges": items})
}

// Attempt godoc
// @Summary      Submit an answer to a challenge
// @Tags         Catalog
// @Security     BearerAuth
// @Param        id   path int            true "Challenge ID"
// @Param        body body AttemptRequest true "Answer"
// @Success      200 {object} AttemptResult
// @Router       /challenges/{id}/attempts [post]
func (h *Handler) Attempt(c *gin.Context) {
	id, ok := order.ParseID(c)
	if !ok {
		return
	}
	var req AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	res, err := h.service.Attempt(c.Request.Context(), order.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
