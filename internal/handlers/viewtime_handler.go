package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/models"
)

// ViewTimeEstimator defines the interface for viewtime operations
type ViewTimeEstimator interface {
	// Method CourseViewTime sums the durations of the user's completed
	// lectures, broken down per course and section.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	CourseViewTime(ctx context.Context, userID string) (*models.ViewTime, error)
	// Method TaskViewTime estimates seconds spent on solved challenge subtasks.
	//
	// "authToken" parameter is the caller's own bearer token, forwarded
	// to the challenges service.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	TaskViewTime(ctx context.Context, authToken string) (*models.TotalTime, error)
	// Method TotalViewTime sums course and task viewtime.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	TotalViewTime(ctx context.Context, userID, authToken string) (*models.TotalTime, error)
}

// ViewTimeHandler handles viewtime HTTP requests
type ViewTimeHandler struct {
	BaseHandler
	viewtime ViewTimeEstimator
	authMw   func(http.Handler) http.Handler
}

// NewViewTimeHandler creates a new viewtime handler
func NewViewTimeHandler(viewtime ViewTimeEstimator, logger *zap.Logger, authMw func(http.Handler) http.Handler) *ViewTimeHandler {
	return &ViewTimeHandler{
		BaseHandler: BaseHandler{Logger: logger},
		viewtime:    viewtime,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all viewtime handler routes
func (h *ViewTimeHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authMw)
		r.Get("/courses_viewtime", h.CourseViewTime)
		r.Get("/tasks_viewtime", h.TaskViewTime)
		r.Get("/viewtime", h.TotalViewTime)
	})
}

// CourseViewTime handles GET /courses_viewtime
// @Summary Get the course viewtime breakdown
// @Description Sum the durations of completed lectures per course and section.
// @Tags viewtime
// @Accept json
// @Produce json
// @Success 200 {object} models.ViewTime
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses_viewtime [get]
func (h *ViewTimeHandler) CourseViewTime(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	vt, err := h.viewtime.CourseViewTime(r.Context(), user.ID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, vt)
}

// TaskViewTime handles GET /tasks_viewtime
// @Summary Get the task viewtime estimate
// @Description Estimate seconds spent on solved challenge subtasks.
// @Tags viewtime
// @Accept json
// @Produce json
// @Success 200 {object} models.TotalTime
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tasks_viewtime [get]
func (h *ViewTimeHandler) TaskViewTime(w http.ResponseWriter, r *http.Request) {
	total, err := h.viewtime.TaskViewTime(r.Context(), auth.GetRawToken(r.Context()))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, total)
}

// TotalViewTime handles GET /viewtime
// @Summary Get the total viewtime
// @Description Sum lecture and task viewtime into one number. Fails entirely when either source is unavailable.
// @Tags viewtime
// @Accept json
// @Produce json
// @Success 200 {object} models.TotalTime
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /viewtime [get]
func (h *ViewTimeHandler) TotalViewTime(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	total, err := h.viewtime.TotalViewTime(r.Context(), user.ID, auth.GetRawToken(r.Context()))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, total)
}
