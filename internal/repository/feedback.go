package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/themis/internal/models"
)

// GetAllFeedback returns every feedback record ordered by its identifier.
// A NULL feedback text is returned as an empty string.
func (r *Repository) GetAllFeedback(ctx context.Context) ([]models.Feedback, error) {
	defer r.observe("get_feedback", time.Now())

	query := `SELECT id, COALESCE(feedback, '') FROM employee_feedback ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	feedback := make([]models.Feedback, 0)
	for rows.Next() {
		var record models.Feedback
		if err = rows.Scan(&record.ID, &record.Text); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback rows: %w", err)
	}

	return feedback, nil
}
