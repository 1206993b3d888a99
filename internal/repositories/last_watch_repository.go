package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type lastWatchRepository struct {
	db *sql.DB
}

// NewLastWatchRepository creates a new last watch repository
func NewLastWatchRepository(db *sql.DB) *lastWatchRepository {
	return &lastWatchRepository{
		db: db,
	}
}

// Upsert records that the user opened the course just now.
// One row per (user, course) pair; repeated watches update the timestamp.
func (r *lastWatchRepository) Upsert(ctx context.Context, userID, courseID string) error {
	query := `
		INSERT INTO last_watch (user_id, course_id, watched_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE watched_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to upsert last watch: %w", err)
	}

	return nil
}

// GetCourseIDsByUser returns the IDs of all courses the user has opened
func (r *lastWatchRepository) GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT course_id FROM last_watch WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched course ids: %w", err)
	}
	defer rows.Close()

	var courseIDs []string
	for rows.Next() {
		var courseID string
		if err := rows.Scan(&courseID); err != nil {
			return nil, fmt.Errorf("failed to scan course id: %w", err)
		}
		courseIDs = append(courseIDs, courseID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course ids: %w", err)
	}

	return courseIDs, nil
}

// GetTimestampsByUser returns the last watch timestamp per course for the user
func (r *lastWatchRepository) GetTimestampsByUser(ctx context.Context, userID string) (map[string]time.Time, error) {
	query := `SELECT course_id, watched_at FROM last_watch WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last watch timestamps: %w", err)
	}
	defer rows.Close()

	timestamps := make(map[string]time.Time)
	for rows.Next() {
		var courseID string
		var watchedAt time.Time
		if err := rows.Scan(&courseID, &watchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan last watch row: %w", err)
		}
		timestamps[courseID] = watchedAt
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate last watch rows: %w", err)
	}

	return timestamps, nil
}
