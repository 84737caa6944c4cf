package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
	"github.com/oklog/ulid/v2"
)

// QueueAdaptations stores adaptations to bias the next generation run for
// the (user, day). Entries are written atomically.
func (s *SQLiteStore) QueueAdaptations(ctx context.Context, userID string, day types.Day, adaptations []types.RoutineAdaptation) error {
	if len(adaptations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pending_adaptations (id, user_id, day, type, description, reason, impact_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare adaptation insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, a := range adaptations {
		_, err = stmt.ExecContext(ctx, ulid.Make().String(), userID, string(day),
			string(a.Type), a.Description, a.Reason, a.ImpactScore, now)
		if err != nil {
			return fmt.Errorf("insert adaptation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListPendingAdaptations returns unconsumed adaptations queued for the
// (user, day), highest impact first. Rows stay pending until
// MarkAdaptationsConsumed records the generation that used them.
func (s *SQLiteStore) ListPendingAdaptations(ctx context.Context, userID string, day types.Day) ([]types.PendingAdaptation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, day, type, description, reason, impact_score, created_at
		FROM pending_adaptations
		WHERE user_id = ? AND day = ? AND consumed_at IS NULL
		ORDER BY impact_score DESC, id ASC
	`, userID, string(day))
	if err != nil {
		return nil, fmt.Errorf("query pending adaptations: %w", err)
	}
	defer rows.Close()

	pending := make([]types.PendingAdaptation, 0)
	for rows.Next() {
		var p types.PendingAdaptation
		var pDay, aType, createdAt string

		if err := rows.Scan(&p.ID, &p.UserID, &pDay, &aType,
			&p.Adaptation.Description, &p.Adaptation.Reason,
			&p.Adaptation.ImpactScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending adaptation: %w", err)
		}

		p.Day = types.Day(pDay)
		p.Adaptation.Type = types.AdaptationType(aType)
		p.CreatedAt = parseTimestamp(createdAt)
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending adaptations: %w", err)
	}
	return pending, nil
}

// MarkAdaptationsConsumed stamps the given adaptation rows as consumed.
// Called only after the routine that used them has been persisted.
func (s *SQLiteStore) MarkAdaptationsConsumed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	nowStr := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pending_adaptations SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL
		`, nowStr, id); err != nil {
			return fmt.Errorf("mark adaptation consumed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetProfile retrieves the user's profile.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	var profile types.UserProfile
	var academicGoals, skillGoals string

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, wake_time, sleep_time, available_hours, academic_goals, skill_goals, energy_pattern
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &profile.WakeTime, &profile.SleepTime,
		&profile.AvailableHours, &academicGoals, &skillGoals, &profile.EnergyPattern)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if profile.AcademicGoals, err = unmarshalList(academicGoals); err != nil {
		return nil, err
	}
	if profile.SkillGoals, err = unmarshalList(skillGoals); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PutProfile creates or replaces the user's profile.
func (s *SQLiteStore) PutProfile(ctx context.Context, profile *types.UserProfile) error {
	academicGoals, err := marshalList(profile.AcademicGoals)
	if err != nil {
		return err
	}
	skillGoals, err := marshalList(profile.SkillGoals)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (user_id, wake_time, sleep_time, available_hours, academic_goals, skill_goals, energy_pattern, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, profile.UserID, profile.WakeTime, profile.SleepTime, profile.AvailableHours,
		academicGoals, skillGoals, profile.EnergyPattern,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}
