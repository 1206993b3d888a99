package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type lectureProgressRepository struct {
	db *sql.DB
}

// NewLectureProgressRepository creates a new lecture progress repository
func NewLectureProgressRepository(db *sql.DB) *lectureProgressRepository {
	return &lectureProgressRepository{
		db: db,
	}
}

// CreateIfAbsent inserts a completion record unless one already exists for
// the (user, course, lecture) triple. The unique key makes the insert
// atomic; a lost race reports the record as already existing instead of
// creating a duplicate fact.
// Returns true when the record was created, false when it already existed.
func (r *lectureProgressRepository) CreateIfAbsent(ctx context.Context, userID, courseID, lectureID string) (bool, error) {
	query := `INSERT IGNORE INTO lecture_progress (user_id, course_id, lecture_id) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, courseID, lectureID)
	if err != nil {
		return false, fmt.Errorf("failed to create lecture progress record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetCompletedLectures returns the IDs of all lectures the user completed in a course
func (r *lectureProgressRepository) GetCompletedLectures(ctx context.Context, userID, courseID string) ([]string, error) {
	query := `SELECT lecture_id FROM lecture_progress WHERE user_id = ? AND course_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}
	defer rows.Close()

	var lectureIDs []string
	for rows.Next() {
		var lectureID string
		if err := rows.Scan(&lectureID); err != nil {
			return nil, fmt.Errorf("failed to scan lecture id: %w", err)
		}
		lectureIDs = append(lectureIDs, lectureID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lecture ids: %w", err)
	}

	return lectureIDs, nil
}

// GetCompletedByUser returns all completed lecture IDs for the user, grouped by course
func (r *lectureProgressRepository) GetCompletedByUser(ctx context.Context, userID string) (map[string][]string, error) {
	query := `SELECT course_id, lecture_id FROM lecture_progress WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed lectures: %w", err)
	}
	defer rows.Close()

	completed := make(map[string][]string)
	for rows.Next() {
		var courseID, lectureID string
		if err := rows.Scan(&courseID, &lectureID); err != nil {
			return nil, fmt.Errorf("failed to scan lecture progress row: %w", err)
		}
		completed[courseID] = append(completed[courseID], lectureID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lecture progress rows: %w", err)
	}

	return completed, nil
}
