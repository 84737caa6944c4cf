package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
	"github.com/oklog/ulid/v2"
)

// InsertReview stores an evening review. Returns ErrReviewExists when a
// review already exists for the (user, day).
func (s *SQLiteStore) InsertReview(ctx context.Context, review *types.EveningReview) error {
	if review.ID == "" {
		review.ID = ulid.Make().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	accomplished, err := marshalList(review.Accomplished)
	if err != nil {
		return err
	}
	missed, err := marshalList(review.Missed)
	if err != nil {
		return err
	}
	missedReasons, err := marshalList(review.MissedReasons)
	if err != nil {
		return err
	}
	tomorrow, err := marshalList(review.Tomorrow)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evening_reviews (id, user_id, day, accomplished, missed, missed_reasons, tomorrow, mood, energy_level, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, review.ID, review.UserID, string(review.Day), accomplished, missed, missedReasons, tomorrow,
		review.Mood, review.EnergyLevel, review.Insights, review.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrReviewExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetReview retrieves the review for a (user, day).
func (s *SQLiteStore) GetReview(ctx context.Context, userID string, day types.Day) (*types.EveningReview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, accomplished, missed, missed_reasons, tomorrow, mood, energy_level, insights, created_at
		FROM evening_reviews
		WHERE user_id = ? AND day = ?
	`, userID, string(day))

	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return review, nil
}

// LatestReviews returns the user's most recent reviews, newest day first.
func (s *SQLiteStore) LatestReviews(ctx context.Context, userID string, limit int) ([]types.EveningReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, day, accomplished, missed, missed_reasons, tomorrow, mood, energy_level, insights, created_at
		FROM evening_reviews
		WHERE user_id = ?
		ORDER BY day DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]types.EveningReview, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

func scanReview(scanner interface{ Scan(...any) error }) (*types.EveningReview, error) {
	var review types.EveningReview
	var day, accomplished, missed, missedReasons, tomorrow, createdAt string

	err := scanner.Scan(
		&review.ID,
		&review.UserID,
		&day,
		&accomplished,
		&missed,
		&missedReasons,
		&tomorrow,
		&review.Mood,
		&review.EnergyLevel,
		&review.Insights,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	review.Day = types.Day(day)
	review.CreatedAt = parseTimestamp(createdAt)

	if review.Accomplished, err = unmarshalList(accomplished); err != nil {
		return nil, err
	}
	if review.Missed, err = unmarshalList(missed); err != nil {
		return nil, err
	}
	if review.MissedReasons, err = unmarshalList(missedReasons); err != nil {
		return nil, err
	}
	if review.Tomorrow, err = unmarshalList(tomorrow); err != nil {
		return nil, err
	}
	return &review, nil
}
