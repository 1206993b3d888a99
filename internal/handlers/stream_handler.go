package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/models"
)

// StreamReader defines the interface for tokenized byte-range reads
type StreamReader interface {
	// Method ReadRange resolves a stream token and reads the requested
	// byte range of the backing file.
	//
	// "token" parameter is the opaque stream token from the URL.
	// "name" parameter is the public file name from the URL.
	// "rangeHeader" parameter is the Range header value.
	//
	// If some error will occur during the read, the error will be returned together with "nil" value.
	ReadRange(ctx context.Context, token, name, rangeHeader string) (*models.StreamChunk, error)
}

// StreamHandler serves lecture video chunks behind short-lived tokens.
// No session authentication happens here; holding a live token is the
// authorization.
type StreamHandler struct {
	BaseHandler
	streams StreamReader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(streams StreamReader, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		BaseHandler: BaseHandler{Logger: logger},
		streams:     streams,
	}
}

// RegisterRoutes registers all stream handler routes
func (h *StreamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/lectures/{token}/{file}", h.StreamLecture)
}

// StreamLecture handles GET /lectures/{token}/{file}
// @Summary Stream a lecture chunk
// @Description Serve one byte range of a lecture video behind a short-lived token. Requests without a Range header read from the start.
// @Tags stream
// @Produce video/mp4
// @Param token path string true "Stream token"
// @Param file path string true "File name"
// @Param Range header string false "Byte range, e.g. bytes=0-"
// @Success 206 "Partial file content"
// @Failure 404 {object} map[string]string "Token unknown or expired"
// @Failure 416 {object} map[string]string "Unsatisfiable byte range"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lectures/{token}/{file} [get]
func (h *StreamHandler) StreamLecture(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	file := chi.URLParam(r, "file")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		rangeHeader = "bytes=0-"
	}

	chunk, err := h.streams.ReadRange(r.Context(), token, file, rangeHeader)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Range", chunk.ContentRange())
	w.Header().Set("Content-Length", strconv.Itoa(len(chunk.Data)))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := w.Write(chunk.Data); err != nil {
		h.Logger.Debug("failed to write stream chunk", zap.Error(err))
	}
}
