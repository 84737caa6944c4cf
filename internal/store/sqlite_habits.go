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

// CreateHabit inserts a new active habit for the user.
func (s *SQLiteStore) CreateHabit(ctx context.Context, userID string, input types.NewHabit) (*types.Habit, error) {
	now := time.Now().UTC()
	habit := &types.Habit{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Name:         input.Name,
		Frequency:    input.Frequency,
		Cue:          input.Cue,
		Reward:       input.Reward,
		StackedAfter: input.StackedAfter,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if habit.Frequency == "" {
		habit.Frequency = types.FrequencyDaily
	}

	if habit.StackedAfter != "" {
		if _, err := s.GetHabit(ctx, habit.StackedAfter); err != nil {
			return nil, fmt.Errorf("stacked_after habit: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, name, frequency, cue, reward, stacked_after, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, habit.ID, habit.UserID, habit.Name, habit.Frequency, habit.Cue, habit.Reward,
		nullableString(habit.StackedAfter), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}

	return habit, nil
}

// GetHabit retrieves a habit by ID.
func (s *SQLiteStore) GetHabit(ctx context.Context, id string) (*types.Habit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, frequency, cue, reward, stacked_after, active, created_at, updated_at
		FROM habits
		WHERE id = ?
	`, id)

	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan habit: %w", err)
	}
	return habit, nil
}

// ListHabits returns the user's habits, newest first.
func (s *SQLiteStore) ListHabits(ctx context.Context, userID string, activeOnly bool) ([]types.Habit, error) {
	query := `
		SELECT id, user_id, name, frequency, cue, reward, stacked_after, active, created_at, updated_at
		FROM habits
		WHERE user_id = ?`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer rows.Close()

	habits := make([]types.Habit, 0)
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *habit)
	}
	return habits, rows.Err()
}

// UpdateHabit persists changes to a habit's mutable fields.
func (s *SQLiteStore) UpdateHabit(ctx context.Context, habit *types.Habit) error {
	habit.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE habits
		SET name = ?, frequency = ?, cue = ?, reward = ?, stacked_after = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, habit.Name, habit.Frequency, habit.Cue, habit.Reward,
		nullableString(habit.StackedAfter), boolInt(habit.Active),
		habit.UpdatedAt.Format(time.RFC3339), habit.ID)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateHabit soft-disables a habit. Completion history is retained.
func (s *SQLiteStore) DeactivateHabit(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET active = 0, updated_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("deactivate habit: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasDependents reports whether any active habit stacks on habitID.
func (s *SQLiteStore) HasDependents(ctx context.Context, habitID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM habits WHERE stacked_after = ? AND active = 1
	`, habitID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count dependents: %w", err)
	}
	return count > 0, nil
}

// UpsertCompletion records a habit completion for a day. A second
// submission for the same (habit, day) overwrites the previous record.
func (s *SQLiteStore) UpsertCompletion(ctx context.Context, habitID string, payload types.CompletionPayload) (*types.HabitCompletionRecord, error) {
	day, err := types.ParseDay(payload.Day)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)

	record := &types.HabitCompletionRecord{
		ID:        ulid.Make().String(),
		HabitID:   habitID,
		Day:       day,
		Completed: payload.Completed,
		Quality:   payload.Quality,
		Notes:     payload.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (id, habit_id, day, completed, quality, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			quality = excluded.quality,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, record.ID, habitID, string(day), boolInt(record.Completed), string(record.Quality), record.Notes, nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("upsert completion: %w", err)
	}

	// Re-read so updates return the surviving row's ID and timestamps.
	row := s.db.QueryRowContext(ctx, `
		SELECT id, habit_id, day, completed, quality, notes, created_at, updated_at
		FROM habit_completions
		WHERE habit_id = ? AND day = ?
	`, habitID, string(day))
	return scanCompletion(row)
}

// ListCompletions returns completion records for a habit, most recent day
// first. limit <= 0 returns all records.
func (s *SQLiteStore) ListCompletions(ctx context.Context, habitID string, limit int) ([]types.HabitCompletionRecord, error) {
	query := `
		SELECT id, habit_id, day, completed, quality, notes, created_at, updated_at
		FROM habit_completions
		WHERE habit_id = ?
		ORDER BY day DESC`
	args := []any{habitID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	records := make([]types.HabitCompletionRecord, 0)
	for rows.Next() {
		record, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanHabit(scanner interface{ Scan(...any) error }) (*types.Habit, error) {
	var habit types.Habit
	var stackedAfter sql.NullString
	var active int
	var createdAt, updatedAt string

	err := scanner.Scan(
		&habit.ID,
		&habit.UserID,
		&habit.Name,
		&habit.Frequency,
		&habit.Cue,
		&habit.Reward,
		&stackedAfter,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	habit.StackedAfter = stackedAfter.String
	habit.Active = active != 0
	habit.CreatedAt = parseTimestamp(createdAt)
	habit.UpdatedAt = parseTimestamp(updatedAt)
	return &habit, nil
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*types.HabitCompletionRecord, error) {
	var record types.HabitCompletionRecord
	var day string
	var completed int
	var quality string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&record.ID,
		&record.HabitID,
		&day,
		&completed,
		&quality,
		&record.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record.Day = types.Day(day)
	record.Completed = completed != 0
	record.Quality = types.CompletionQuality(quality)
	record.CreatedAt = parseTimestamp(createdAt)
	record.UpdatedAt = parseTimestamp(updatedAt)
	return &record, nil
}

// nullableString converts an empty string to a SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
