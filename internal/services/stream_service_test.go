package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillacademy/course-service/internal/apperrors"
)

// writeLectureFile lays out root/<courseID>/<lectureID>.mp4 with
// deterministic content and returns the file path
func writeLectureFile(t *testing.T, root, courseID, lectureID string, size int) string {
	t.Helper()

	dir := filepath.Join(root, courseID)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(dir, lectureID+".mp4")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func newTestStreamService(t *testing.T, tokenRepo *mockStreamTokenRepository, root string, chunkSize int64) *StreamService {
	t.Helper()
	return NewStreamService(
		testCatalog(t),
		tokenRepo,
		root,
		"https://media.example.com",
		2*time.Minute,
		chunkSize,
		zap.NewNop(),
	)
}

func TestStreamService_IssueLink(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		root := t.TempDir()
		path := writeLectureFile(t, root, "go-basics", "l1", 100)
		tokenRepo := &mockStreamTokenRepository{}
		svc := newTestStreamService(t, tokenRepo, root, 1024)

		link, err := svc.IssueLink(context.Background(), "go-basics", "l1")

		require.NoError(t, err)
		assert.Equal(t, path, tokenRepo.savedPath)
		assert.Equal(t, "go-basics_l1.mp4", tokenRepo.savedName)
		assert.Equal(t, 2*time.Minute, tokenRepo.savedTTL)
		assert.NotEmpty(t, tokenRepo.savedToken)
		assert.Equal(t,
			fmt.Sprintf("https://media.example.com/lectures/%s/go-basics_l1.mp4", tokenRepo.savedToken),
			link,
		)
	})

	t.Run("tokens are unique per issue", func(t *testing.T) {
		root := t.TempDir()
		writeLectureFile(t, root, "go-basics", "l1", 100)
		tokenRepo := &mockStreamTokenRepository{}
		svc := newTestStreamService(t, tokenRepo, root, 1024)

		_, err := svc.IssueLink(context.Background(), "go-basics", "l1")
		require.NoError(t, err)
		first := tokenRepo.savedToken

		_, err = svc.IssueLink(context.Background(), "go-basics", "l1")
		require.NoError(t, err)

		assert.NotEqual(t, first, tokenRepo.savedToken)
	})

	t.Run("unknown course", func(t *testing.T) {
		svc := newTestStreamService(t, &mockStreamTokenRepository{}, t.TempDir(), 1024)

		_, err := svc.IssueLink(context.Background(), "missing", "l1")

		assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	})

	t.Run("non-video lecture", func(t *testing.T) {
		svc := newTestStreamService(t, &mockStreamTokenRepository{}, t.TempDir(), 1024)

		_, err := svc.IssueLink(context.Background(), "go-basics", "l4")

		assert.ErrorIs(t, err, apperrors.ErrLectureNotFound)
	})

	t.Run("file missing on disk", func(t *testing.T) {
		svc := newTestStreamService(t, &mockStreamTokenRepository{}, t.TempDir(), 1024)

		_, err := svc.IssueLink(context.Background(), "go-basics", "l1")

		assert.ErrorIs(t, err, apperrors.ErrLectureNotFound)
	})
}

func TestStreamService_ReadRange(t *testing.T) {
	root := t.TempDir()
	path := writeLectureFile(t, root, "go-basics", "l1", 1000)

	newService := func(chunkSize int64) *StreamService {
		return newTestStreamService(t, &mockStreamTokenRepository{path: path}, root, chunkSize)
	}

	t.Run("open-ended range reads one chunk", func(t *testing.T) {
		svc := newService(100)

		chunk, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=0-")

		require.NoError(t, err)
		assert.Equal(t, int64(0), chunk.Start)
		assert.Equal(t, int64(100), chunk.End)
		assert.Equal(t, int64(1000), chunk.Size)
		assert.Len(t, chunk.Data, 100)
		assert.Equal(t, "bytes 0-99/1000", chunk.ContentRange())
	})

	t.Run("explicit range is inclusive", func(t *testing.T) {
		svc := newService(100)

		chunk, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=100-199")

		require.NoError(t, err)
		assert.Equal(t, int64(100), chunk.Start)
		assert.Equal(t, int64(200), chunk.End)
		assert.Len(t, chunk.Data, 100)
		assert.Equal(t, byte(100%251), chunk.Data[0])
		assert.Equal(t, "bytes 100-199/1000", chunk.ContentRange())
	})

	t.Run("open-ended range near the end is clamped", func(t *testing.T) {
		svc := newService(100)

		chunk, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=950-")

		require.NoError(t, err)
		assert.Equal(t, int64(1000), chunk.End)
		assert.Len(t, chunk.Data, 50)
		assert.Equal(t, "bytes 950-999/1000", chunk.ContentRange())
	})

	t.Run("explicit end past the file is clamped", func(t *testing.T) {
		svc := newService(100)

		chunk, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=900-5000")

		require.NoError(t, err)
		assert.Equal(t, int64(1000), chunk.End)
		assert.Len(t, chunk.Data, 100)
	})

	t.Run("inverted range reads the single byte at start", func(t *testing.T) {
		svc := newService(100)

		chunk, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=100-50")

		require.NoError(t, err)
		assert.Equal(t, int64(100), chunk.Start)
		assert.Equal(t, int64(101), chunk.End)
		assert.Len(t, chunk.Data, 1)
	})

	t.Run("start past the file", func(t *testing.T) {
		svc := newService(100)

		_, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=1000-")

		assert.ErrorIs(t, err, apperrors.ErrInvalidRange)
	})

	t.Run("malformed header", func(t *testing.T) {
		svc := newService(100)

		for _, header := range []string{"", "bytes=", "bytes=abc-", "0-100", "bytes=0-100,200-300"} {
			_, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", header)
			assert.ErrorIs(t, err, apperrors.ErrInvalidRange, "header %q", header)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tokenRepo := &mockStreamTokenRepository{getErr: apperrors.ErrTokenNotFound}
		svc := newTestStreamService(t, tokenRepo, root, 100)

		_, err := svc.ReadRange(context.Background(), "tok", "go-basics_l1.mp4", "bytes=0-")

		assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	})
}
