package repository

import (
	"context"
	"fmt"
	"time"
)

// GetSlangWords returns the whole slang vocabulary.
func (r *Repository) GetSlangWords(ctx context.Context) ([]string, error) {
	defer r.observe("get_slang_words", time.Now())

	query := `SELECT word FROM slang_words`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query slang words: %w", err)
	}
	defer rows.Close()

	words := make([]string, 0)
	for rows.Next() {
		var word string
		if err = rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("failed to scan slang word: %w", err)
		}
		words = append(words, word)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slang rows: %w", err)
	}

	return words, nil
}

// IsSlang reports whether the lower-cased word is part of the slang vocabulary.
func (r *Repository) IsSlang(ctx context.Context, word string) (bool, error) {
	defer r.observe("is_slang", time.Now())

	query := `SELECT EXISTS(SELECT 1 FROM slang_words WHERE lower(word) = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, word).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up slang word: %w", err)
	}

	return exists, nil
}
