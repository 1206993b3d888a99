package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type courseAccessRepository struct {
	db *sql.DB
}

// NewCourseAccessRepository creates a new course access repository
func NewCourseAccessRepository(db *sql.DB) *courseAccessRepository {
	return &courseAccessRepository{
		db: db,
	}
}

// Exists checks if a purchase record exists for user and course
func (r *courseAccessRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_access WHERE user_id = ? AND course_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check course access existence: %w", err)
	}

	return exists, nil
}

// CreateIfAbsent inserts a purchase record unless one already exists for the
// pair. The unique key on (user_id, course_id) makes the insert atomic, so
// concurrent duplicate purchases cannot create two records.
// Returns true when the record was created, false when it already existed.
func (r *courseAccessRepository) CreateIfAbsent(ctx context.Context, userID, courseID string) (bool, error) {
	query := `INSERT IGNORE INTO course_access (user_id, course_id) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("failed to create course access record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetCourseIDsByUser returns the IDs of all courses the user purchased
func (r *courseAccessRepository) GetCourseIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT course_id FROM course_access WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchased course ids: %w", err)
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
