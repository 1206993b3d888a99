package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
	"github.com/skillacademy/course-service/internal/catalog"
	"github.com/skillacademy/course-service/internal/models"
)

// StreamTokenRepository defines methods for stream token data access
type StreamTokenRepository interface {
	// Save stores the file path behind a token for the given TTL
	//
	// "ctx" is the context for the request.
	// "token" is the opaque stream token.
	// "name" is the public file name bound to the token.
	// "path" is the absolute file path on disk.
	// "ttl" is how long the token stays valid.
	//
	// Returns an error if any.
	Save(ctx context.Context, token, name, path string, ttl time.Duration) error
	// GetPath resolves a token and file name back to the file path.
	// Returns apperrors.ErrTokenNotFound for unknown or expired tokens.
	GetPath(ctx context.Context, token, name string) (string, error)
}

// rangeRe matches the single-range byte request forms this service serves
var rangeRe = regexp.MustCompile(`^bytes=(\d{1,16})-(\d{1,16})?$`)

// StreamService issues short-lived streaming links for video lectures
// and serves byte ranges of the files behind them
type StreamService struct {
	catalog       *catalog.Catalog
	tokenRepo     StreamTokenRepository
	lecturesPath  string
	publicBaseURL string
	tokenTTL      time.Duration
	chunkSize     int64
	logger        *zap.Logger
}

// NewStreamService creates a new stream service
func NewStreamService(
	cat *catalog.Catalog,
	tokenRepo StreamTokenRepository,
	lecturesPath string,
	publicBaseURL string,
	tokenTTL time.Duration,
	chunkSize int64,
	logger *zap.Logger,
) *StreamService {
	return &StreamService{
		catalog:       cat,
		tokenRepo:     tokenRepo,
		lecturesPath:  lecturesPath,
		publicBaseURL: publicBaseURL,
		tokenTTL:      tokenTTL,
		chunkSize:     chunkSize,
		logger:        logger,
	}
}

// IssueLink creates a tokenized streaming URL for a video lecture. The
// token expires after the configured TTL; until then the link may be
// fetched any number of times.
func (s *StreamService) IssueLink(ctx context.Context, courseID, lectureID string) (string, error) {
	course, ok := s.catalog.Get(courseID)
	if !ok {
		return "", apperrors.ErrCourseNotFound
	}
	_, lecture, ok := course.FindLecture(lectureID)
	if !ok || lecture.Type != "mp4" {
		return "", apperrors.ErrLectureNotFound
	}

	path := filepath.Join(s.lecturesPath, courseID, lectureID+".mp4")
	if !strings.HasPrefix(path, filepath.Clean(s.lecturesPath)+string(filepath.Separator)) {
		return "", apperrors.ErrLectureNotFound
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("lecture file missing on disk",
				zap.String("course_id", courseID),
				zap.String("lecture_id", lectureID),
				zap.String("path", path),
			)
			return "", apperrors.ErrLectureNotFound
		}
		return "", fmt.Errorf("failed to stat lecture file: %w", err)
	}

	token, err := newStreamToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate stream token: %w", err)
	}

	name := courseID + "_" + lectureID + ".mp4"
	if err := s.tokenRepo.Save(ctx, token, name, path, s.tokenTTL); err != nil {
		return "", fmt.Errorf("failed to save stream token: %w", err)
	}

	return fmt.Sprintf("%s/lectures/%s/%s", s.publicBaseURL, token, name), nil
}

// ReadRange resolves a stream token and reads the requested byte range
// of the backing file. An absent end position reads one chunk; an end at
// or past the file size is clamped. A start at or past the file size,
// or a malformed header, yields ErrInvalidRange.
func (s *StreamService) ReadRange(ctx context.Context, token, name, rangeHeader string) (*models.StreamChunk, error) {
	path, err := s.tokenRepo.GetPath(ctx, token, name)
	if err != nil {
		return nil, err
	}

	start, end, err := parseRange(rangeHeader)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat lecture file: %w", err)
	}
	size := info.Size()

	if start >= size {
		return nil, apperrors.ErrInvalidRange
	}
	if end < 0 {
		end = start + s.chunkSize
	}
	if end > size {
		end = size
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lecture file: %w", err)
	}
	defer file.Close()

	data := make([]byte, end-start)
	if _, err := file.ReadAt(data, start); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read lecture file: %w", err)
	}

	return &models.StreamChunk{
		Data:  data,
		Start: start,
		End:   end,
		Size:  size,
	}, nil
}

// parseRange parses a single-range byte request. The returned end is
// exclusive; -1 means no end position was given. An explicit end never
// orders before the start: "bytes=100-50" reads the single byte at 100.
func parseRange(header string) (start, end int64, err error) {
	m := rangeRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, apperrors.ErrInvalidRange
	}

	start, err = strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, apperrors.ErrInvalidRange
	}

	if m[2] == "" {
		return start, -1, nil
	}

	last, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, apperrors.ErrInvalidRange
	}
	end = last + 1
	if end < start+1 {
		end = start + 1
	}
	return start, end, nil
}

// newStreamToken returns a URL-safe random token
func newStreamToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
