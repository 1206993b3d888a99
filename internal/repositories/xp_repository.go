package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type xpRepository struct {
	db *sql.DB
}

// NewXPRepository creates a new experience point repository
func NewXPRepository(db *sql.DB) *xpRepository {
	return &xpRepository{
		db: db,
	}
}

// AddXP increments the experience points of a user for a skill,
// creating the row on first award
func (r *xpRepository) AddXP(ctx context.Context, userID, skillID string, amount int) error {
	query := `
		INSERT INTO xp (user_id, skill_id, xp)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE xp = xp + VALUES(xp)
	`

	_, err := r.db.ExecContext(ctx, query, userID, skillID, amount)
	if err != nil {
		return fmt.Errorf("failed to add xp: %w", err)
	}

	return nil
}

// GetXP returns the experience points of a user for a skill
func (r *xpRepository) GetXP(ctx context.Context, userID, skillID string) (int, error) {
	query := `SELECT xp FROM xp WHERE user_id = ? AND skill_id = ?`

	var xp int
	err := r.db.QueryRowContext(ctx, query, userID, skillID).Scan(&xp)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get xp: %w", err)
	}

	return xp, nil
}
