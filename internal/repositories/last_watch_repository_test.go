package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLastWatchTestRepository creates a last watch repository with a mock database
func setupLastWatchTestRepository(t *testing.T) (*lastWatchRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewLastWatchRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestLastWatchRepository_Upsert(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success - first watch",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO last_watch \(user_id, course_id, watched_at\)`).
					WithArgs("u1", "go-basics").
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "success - repeated watch updates timestamp",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO last_watch \(user_id, course_id, watched_at\)`).
					WithArgs("u1", "go-basics").
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO last_watch \(user_id, course_id, watched_at\)`).
					WithArgs("u1", "go-basics").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLastWatchTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Upsert(context.Background(), "u1", "go-basics")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLastWatchRepository_GetCourseIDsByUser(t *testing.T) {
	repo, mock, cleanup := setupLastWatchTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"course_id"}).
		AddRow("go-basics").
		AddRow("intro")
	mock.ExpectQuery(`SELECT course_id FROM last_watch WHERE user_id = \?`).
		WithArgs("u1").
		WillReturnRows(rows)

	ids, err := repo.GetCourseIDsByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []string{"go-basics", "intro"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastWatchRepository_GetTimestampsByUser(t *testing.T) {
	repo, mock, cleanup := setupLastWatchTestRepository(t)
	defer cleanup()

	now := time.Now()
	earlier := now.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"course_id", "watched_at"}).
		AddRow("go-basics", now).
		AddRow("intro", earlier)
	mock.ExpectQuery(`SELECT course_id, watched_at FROM last_watch WHERE user_id = \?`).
		WithArgs("u1").
		WillReturnRows(rows)

	timestamps, err := repo.GetTimestampsByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, now, timestamps["go-basics"])
	assert.Equal(t, earlier, timestamps["intro"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
