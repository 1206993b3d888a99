// Package handlers contains the HTTP handlers for the course service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAppError maps a business error to its HTTP status. Unmapped
// errors are logged and answered with a 500.
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrLectureNotFound),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrSkillNotFound),
		errors.Is(err, apperrors.ErrBookmarkNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrAlreadyPurchased),
		errors.Is(err, apperrors.ErrAlreadyCompleted),
		errors.Is(err, apperrors.ErrAlreadyBookmarked),
		errors.Is(err, apperrors.ErrCourseIsFree):
		h.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrNoCourseAccess):
		h.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrNotEnoughCoins):
		h.RespondError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, apperrors.ErrInvalidRange):
		h.RespondError(w, http.StatusRequestedRangeNotSatisfiable, err.Error())
	case errors.Is(err, apperrors.ErrDataFetch):
		h.Logger.Error("upstream data fetch failed", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, apperrors.ErrDataFetch.Error())
	default:
		h.Logger.Error("request failed", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
