package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/auth"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
	"github.com/skillacademy/course-service/internal/services"
)

// CourseListing defines the interface for course list operations
type CourseListing interface {
	// Method ListCourses returns catalog summaries matching the filters.
	//
	// "user" parameter is nil for anonymous requests.
	// "filters" parameter narrows and orders the list.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	ListCourses(ctx context.Context, user *auth.User, filters services.ListFilters) ([]*models.CourseSummary, error)
	// Method AccessibleCourses returns summaries of every course the user may access.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	AccessibleCourses(ctx context.Context, user auth.User) ([]*models.CourseSummary, error)
}

// AccessManager defines the interface for course access operations
type AccessManager interface {
	// Method HasAccess reports whether the user may access the course.
	//
	// If some error will occur during the check, the error will be returned together with "false" value.
	HasAccess(ctx context.Context, user auth.User, course *models.Course) (bool, error)
	// Method PurchaseCourse buys access to a course for the user.
	//
	// If some error will occur during the purchase, the error will be returned together with "nil" value.
	PurchaseCourse(ctx context.Context, user auth.User, courseID string) (*models.PurchaseReceipt, error)
	// Method WatchCourse marks the course as watched for the user.
	//
	// If some error will occur, the error will be returned.
	WatchCourse(ctx context.Context, userID, courseID string) error
}

// ProgressManager defines the interface for lecture progress operations
type ProgressManager interface {
	// Method CourseDetails returns the full course summary, with
	// completion flags for authenticated users.
	//
	// "user" parameter is nil for anonymous requests.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	CourseDetails(ctx context.Context, courseID string, user *auth.User) (*models.CourseSummary, error)
	// Method CompleteLecture marks a lecture as completed exactly once.
	//
	// If some error will occur, the error will be returned.
	CompleteLecture(ctx context.Context, userID, courseID, lectureID string) error
	// Method NextUnseen returns the first uncompleted lecture of the course.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	NextUnseen(ctx context.Context, userID, courseID string) (*models.NextUnseenResponse, error)
}

// StreamLinker defines the interface for streaming link issuance
type StreamLinker interface {
	// Method IssueLink creates a tokenized streaming URL for a video lecture.
	//
	// If some error will occur, the error will be returned together with an empty string.
	IssueLink(ctx context.Context, courseID, lectureID string) (string, error)
}

// CourseHandler handles course-related HTTP requests
type CourseHandler struct {
	BaseHandler
	catalog    *catalog.Catalog
	listing    CourseListing
	access     AccessManager
	progress   ProgressManager
	streams    StreamLinker
	authMw     func(http.Handler) http.Handler
	optionalMw func(http.Handler) http.Handler
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(
	cat *catalog.Catalog,
	listing CourseListing,
	access AccessManager,
	progress ProgressManager,
	streams StreamLinker,
	logger *zap.Logger,
	authMw func(http.Handler) http.Handler,
	optionalMw func(http.Handler) http.Handler,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler: BaseHandler{Logger: logger},
		catalog:     cat,
		listing:     listing,
		access:      access,
		progress:    progress,
		streams:     streams,
		authMw:      authMw,
		optionalMw:  optionalMw,
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.optionalMw)
			r.Get("/", h.ListCourses)
			r.Get("/{courseID}/summary", h.CourseSummary)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMw)
			r.Use(auth.RequireVerified)
			r.Get("/{courseID}", h.GetCourse)
			r.Post("/{courseID}/watch", h.WatchCourse)
			r.Get("/{courseID}/next_unseen", h.NextUnseen)
			r.Get("/{courseID}/lectures/{lectureID}", h.LectureLink)
			r.Put("/{courseID}/lectures/{lectureID}/complete", h.CompleteLecture)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMw)
		r.Use(auth.RequireVerified)
		r.Get("/course_access", h.AccessibleCourses)
		r.Post("/course_access/{courseID}", h.BuyCourse)
	})
}

// requireCourseAccess loads the course and checks that the user may
// access it. Writes the error response and returns nil when not.
func (h *CourseHandler) requireCourseAccess(w http.ResponseWriter, r *http.Request, user auth.User) *models.Course {
	courseID := chi.URLParam(r, "courseID")

	course, ok := h.catalog.Get(courseID)
	if !ok {
		h.RespondAppError(w, apperrors.ErrCourseNotFound)
		return nil
	}

	allowed, err := h.access.HasAccess(r.Context(), user, course)
	if err != nil {
		h.Logger.Error("failed to check course access", zap.Error(err), zap.String("course_id", courseID))
		h.RespondError(w, http.StatusInternalServerError, "failed to check course access")
		return nil
	}
	if !allowed {
		h.RespondAppError(w, apperrors.ErrNoCourseAccess)
		return nil
	}

	return course
}

// ListCourses handles GET /courses
// @Summary List courses
// @Description List catalog courses with optional filters. Completion flags are included for authenticated users.
// @Tags courses
// @Accept json
// @Produce json
// @Param search query string false "Case-insensitive title substring"
// @Param language query string false "Case-insensitive substring of the course language"
// @Param author query string false "Author name"
// @Param free query boolean false "Only free (true) or paid (false) courses"
// @Param owned query boolean false "Only owned (true) or not owned (false) courses"
// @Param recent_first query boolean false "Most recently watched first (authenticated only)"
// @Success 200 {array} models.CourseSummary
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	var user *auth.User
	if u, ok := auth.GetUser(r.Context()); ok {
		user = &u
	}

	filters := services.ListFilters{
		Search:   r.URL.Query().Get("search"),
		Language: r.URL.Query().Get("language"),
		Author:   r.URL.Query().Get("author"),
	}
	if raw := r.URL.Query().Get("free"); raw != "" {
		free, err := strconv.ParseBool(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid free parameter")
			return
		}
		filters.Free = &free
	}
	if raw := r.URL.Query().Get("owned"); raw != "" {
		owned, err := strconv.ParseBool(raw)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid owned parameter")
			return
		}
		filters.Owned = &owned
	}
	filters.RecentFirst = r.URL.Query().Get("recent_first") == "true"

	summaries, err := h.listing.ListCourses(r.Context(), user, filters)
	if err != nil {
		h.Logger.Error("failed to list courses", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, summaries)
}

// CourseSummary handles GET /courses/{courseID}/summary
// @Summary Get the course summary
// @Description Retrieve a course with its sections and lectures. Completion flags are included for authenticated users.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 200 {object} models.CourseSummary
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/summary [get]
func (h *CourseHandler) CourseSummary(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var user *auth.User
	if u, ok := auth.GetUser(r.Context()); ok {
		user = &u
	}

	summary, err := h.progress.CourseDetails(r.Context(), courseID, user)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// GetCourse handles GET /courses/{courseID}
// @Summary Get course details
// @Description Retrieve a course the user may access, with completion flags. Requires course access.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 200 {object} models.CourseSummary
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "No course access"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	course := h.requireCourseAccess(w, r, user)
	if course == nil {
		return
	}

	summary, err := h.progress.CourseDetails(r.Context(), course.ID, &user)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// AccessibleCourses handles GET /course_access
// @Summary List accessible courses
// @Description List every course the authenticated user may access, with completion flags.
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {array} models.CourseSummary
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /course_access [get]
func (h *CourseHandler) AccessibleCourses(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	summaries, err := h.listing.AccessibleCourses(r.Context(), user)
	if err != nil {
		h.Logger.Error("failed to list accessible courses", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list accessible courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, summaries)
}

// BuyCourse handles POST /course_access/{courseID}
// @Summary Buy a course
// @Description Purchase access to a paid course with coins. Requires a verified email address.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 201 {object} models.PurchaseReceipt
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Email verification required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Already purchased or course is free"
// @Failure 412 {object} map[string]string "Not enough coins"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /course_access/{courseID} [post]
func (h *CourseHandler) BuyCourse(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	courseID := chi.URLParam(r, "courseID")

	receipt, err := h.access.PurchaseCourse(r.Context(), user, courseID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, receipt)
}

// WatchCourse handles POST /courses/{courseID}/watch
// @Summary Mark a course as watched
// @Description Record that the user opened the course just now. Requires course access.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 204 "Watch recorded"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "No course access"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/watch [post]
func (h *CourseHandler) WatchCourse(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	course := h.requireCourseAccess(w, r, user)
	if course == nil {
		return
	}

	if err := h.access.WatchCourse(r.Context(), user.ID, course.ID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NextUnseen handles GET /courses/{courseID}/next_unseen
// @Summary Get the next unseen lecture
// @Description Return the first uncompleted lecture of the course, wrapping to the start when everything is completed. Requires course access.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Success 200 {object} models.NextUnseenResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "No course access"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/next_unseen [get]
func (h *CourseHandler) NextUnseen(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())

	course := h.requireCourseAccess(w, r, user)
	if course == nil {
		return
	}

	next, err := h.progress.NextUnseen(r.Context(), user.ID, course.ID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, next)
}

// LectureLink handles GET /courses/{courseID}/lectures/{lectureID}
// @Summary Get a streaming link for a lecture
// @Description Issue a short-lived tokenized streaming URL for a video lecture. Requires course access.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Param lectureID path string true "Lecture ID"
// @Success 200 {object} map[string]string "Streaming URL"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "No course access"
// @Failure 404 {object} map[string]string "Course or lecture not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lectures/{lectureID} [get]
func (h *CourseHandler) LectureLink(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	lectureID := chi.URLParam(r, "lectureID")

	course := h.requireCourseAccess(w, r, user)
	if course == nil {
		return
	}

	link, err := h.streams.IssueLink(r.Context(), course.ID, lectureID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"url": link})
}

// CompleteLecture handles PUT /courses/{courseID}/lectures/{lectureID}/complete
// @Summary Complete a lecture
// @Description Mark a lecture as completed and award experience points for the linked skills. Requires course access.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseID path string true "Course ID"
// @Param lectureID path string true "Lecture ID"
// @Success 204 "Lecture completed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "No course access"
// @Failure 404 {object} map[string]string "Course or lecture not found"
// @Failure 409 {object} map[string]string "Lecture already completed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lectures/{lectureID}/complete [put]
func (h *CourseHandler) CompleteLecture(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	lectureID := chi.URLParam(r, "lectureID")

	course := h.requireCourseAccess(w, r, user)
	if course == nil {
		return
	}

	if err := h.progress.CompleteLecture(r.Context(), user.ID, course.ID, lectureID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
