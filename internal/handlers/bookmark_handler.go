package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/auth"
)

// BookmarkManager defines the interface for skill bookmark operations
type BookmarkManager interface {
	// Method BookmarkSubSkill bookmarks a single sub skill for the user.
	//
	// If some error will occur, the error will be returned.
	BookmarkSubSkill(ctx context.Context, userID, rootSkillID, subSkillID string) error
	// Method UnbookmarkSubSkill removes a single sub skill bookmark.
	//
	// If some error will occur, the error will be returned.
	UnbookmarkSubSkill(ctx context.Context, userID, rootSkillID, subSkillID string) error
	// Method BookmarkRootSkill bookmarks every sub skill of a root skill.
	//
	// If some error will occur, the error will be returned.
	BookmarkRootSkill(ctx context.Context, userID, rootSkillID string) error
	// Method UnbookmarkRootSkill removes the bookmarks of every sub skill
	// of a root skill.
	//
	// If some error will occur, the error will be returned.
	UnbookmarkRootSkill(ctx context.Context, userID, rootSkillID string) error
}

// BookmarkHandler handles skill bookmark HTTP requests
type BookmarkHandler struct {
	BaseHandler
	bookmarks BookmarkManager
	authMw    func(http.Handler) http.Handler
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarks BookmarkManager, logger *zap.Logger, authMw func(http.Handler) http.Handler) *BookmarkHandler {
	return &BookmarkHandler{
		BaseHandler: BaseHandler{Logger: logger},
		bookmarks:   bookmarks,
		authMw:      authMw,
	}
}

// RegisterRoutes registers all bookmark handler routes
func (h *BookmarkHandler) RegisterRoutes(r chi.Router) {
	r.Route("/bookmark", func(r chi.Router) {
		r.Use(h.authMw)
		r.Use(auth.RequireVerified)
		r.Post("/{rootSkillID}", h.BookmarkRootSkill)
		r.Delete("/{rootSkillID}", h.UnbookmarkRootSkill)
		r.Post("/{rootSkillID}/{subSkillID}", h.BookmarkSubSkill)
		r.Delete("/{rootSkillID}/{subSkillID}", h.UnbookmarkSubSkill)
	})
}

// BookmarkRootSkill handles POST /bookmark/{rootSkillID}
// @Summary Bookmark a root skill
// @Description Bookmark every sub skill of a root skill. Already bookmarked sub skills are skipped.
// @Tags skills
// @Accept json
// @Produce json
// @Param rootSkillID path string true "Root skill ID"
// @Success 204 "Bookmarks created"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Skill not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /bookmark/{rootSkillID} [post]
func (h *BookmarkHandler) BookmarkRootSkill(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	rootSkillID := chi.URLParam(r, "rootSkillID")

	if err := h.bookmarks.BookmarkRootSkill(r.Context(), user.ID, rootSkillID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnbookmarkRootSkill handles DELETE /bookmark/{rootSkillID}
// @Summary Remove a root skill bookmark
// @Description Remove the bookmarks of every sub skill of a root skill. Missing bookmarks are skipped.
// @Tags skills
// @Accept json
// @Produce json
// @Param rootSkillID path string true "Root skill ID"
// @Success 204 "Bookmarks removed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Skill not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /bookmark/{rootSkillID} [delete]
func (h *BookmarkHandler) UnbookmarkRootSkill(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	rootSkillID := chi.URLParam(r, "rootSkillID")

	if err := h.bookmarks.UnbookmarkRootSkill(r.Context(), user.ID, rootSkillID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BookmarkSubSkill handles POST /bookmark/{rootSkillID}/{subSkillID}
// @Summary Bookmark a sub skill
// @Description Bookmark a single sub skill for the authenticated user.
// @Tags skills
// @Accept json
// @Produce json
// @Param rootSkillID path string true "Root skill ID"
// @Param subSkillID path string true "Sub skill ID"
// @Success 204 "Bookmark created"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Skill not found"
// @Failure 409 {object} map[string]string "Already bookmarked"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /bookmark/{rootSkillID}/{subSkillID} [post]
func (h *BookmarkHandler) BookmarkSubSkill(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	rootSkillID := chi.URLParam(r, "rootSkillID")
	subSkillID := chi.URLParam(r, "subSkillID")

	if err := h.bookmarks.BookmarkSubSkill(r.Context(), user.ID, rootSkillID, subSkillID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnbookmarkSubSkill handles DELETE /bookmark/{rootSkillID}/{subSkillID}
// @Summary Remove a sub skill bookmark
// @Description Remove a single sub skill bookmark of the authenticated user.
// @Tags skills
// @Accept json
// @Produce json
// @Param rootSkillID path string true "Root skill ID"
// @Param subSkillID path string true "Sub skill ID"
// @Success 204 "Bookmark removed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Bookmark not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /bookmark/{rootSkillID}/{subSkillID} [delete]
func (h *BookmarkHandler) UnbookmarkSubSkill(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUser(r.Context())
	rootSkillID := chi.URLParam(r, "rootSkillID")
	subSkillID := chi.URLParam(r, "subSkillID")

	if err := h.bookmarks.UnbookmarkSubSkill(r.Context(), user.ID, rootSkillID, subSkillID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
