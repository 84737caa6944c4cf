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

// InsertRoutine stores a routine and its segments atomically. Returns
// ErrRoutineExists when a routine already exists for the (user, day).
func (s *SQLiteStore) InsertRoutine(ctx context.Context, routine *types.DailyRoutine) error {
	if routine.ID == "" {
		routine.ID = ulid.Make().String()
	}
	if routine.CreatedAt.IsZero() {
		routine.CreatedAt = time.Now().UTC()
	}

	adaptationsJSON, err := marshalList(routine.AdaptationsApplied)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO routines (id, user_id, day, complexity, task_count, deep_work_blocks, break_frequency, multitasking, adaptations_applied, completed, estimated_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, routine.ID, routine.UserID, string(routine.Day), string(routine.Complexity.Level),
		routine.Complexity.TaskCount, routine.Complexity.DeepWorkBlocks,
		routine.Complexity.BreakFrequency, boolInt(routine.Complexity.MultitaskingAllowed),
		adaptationsJSON, boolInt(routine.Completed), routine.EstimatedMinutes,
		routine.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoutineExists
		}
		return fmt.Errorf("insert routine: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routine_segments (id, routine_id, position, start_time, end_time, type, activity, duration_min, priority, completed, focus_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for i := range routine.Segments {
		seg := &routine.Segments[i]
		if seg.ID == "" {
			seg.ID = ulid.Make().String()
		}
		seg.Position = i
		_, err = stmt.ExecContext(ctx, seg.ID, routine.ID, seg.Position, seg.StartTime, seg.EndTime,
			string(seg.Type), seg.Activity, seg.DurationMin, string(seg.Priority),
			boolInt(seg.Completed), string(seg.FocusQuality))
		if err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetRoutine retrieves the routine for a (user, day), segments included.
func (s *SQLiteStore) GetRoutine(ctx context.Context, userID string, day types.Day) (*types.DailyRoutine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, complexity, task_count, deep_work_blocks, break_frequency, multitasking, adaptations_applied, completed, estimated_minutes, created_at
		FROM routines
		WHERE user_id = ? AND day = ?
	`, userID, string(day))
	return s.scanRoutineWithSegments(ctx, row)
}

// GetRoutineByID retrieves a routine by its ID, segments included.
func (s *SQLiteStore) GetRoutineByID(ctx context.Context, id string) (*types.DailyRoutine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, complexity, task_count, deep_work_blocks, break_frequency, multitasking, adaptations_applied, completed, estimated_minutes, created_at
		FROM routines
		WHERE id = ?
	`, id)
	return s.scanRoutineWithSegments(ctx, row)
}

// ListRoutines returns the user's routines on or after since, most recent
// day first, segments included.
func (s *SQLiteStore) ListRoutines(ctx context.Context, userID string, since types.Day) ([]types.DailyRoutine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, day, complexity, task_count, deep_work_blocks, break_frequency, multitasking, adaptations_applied, completed, estimated_minutes, created_at
		FROM routines
		WHERE user_id = ? AND day >= ?
		ORDER BY day DESC
	`, userID, string(since))
	if err != nil {
		return nil, fmt.Errorf("query routines: %w", err)
	}
	defer rows.Close()

	routines := make([]types.DailyRoutine, 0)
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, *routine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routines: %w", err)
	}

	for i := range routines {
		segments, err := s.loadSegments(ctx, routines[i].ID)
		if err != nil {
			return nil, err
		}
		routines[i].Segments = segments
	}
	return routines, nil
}

// UpdateSegment applies a completion update to one segment and returns
// the updated row.
func (s *SQLiteStore) UpdateSegment(ctx context.Context, routineID, segmentID string, update types.SegmentUpdate) (*types.RoutineSegment, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE routine_segments
		SET completed = ?, focus_quality = ?
		WHERE id = ? AND routine_id = ?
	`, boolInt(update.Completed), string(update.FocusQuality), segmentID, routineID)
	if err != nil {
		return nil, fmt.Errorf("update segment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, position, start_time, end_time, type, activity, duration_min, priority, completed, focus_quality
		FROM routine_segments
		WHERE id = ?
	`, segmentID)
	seg, err := scanSegment(row)
	if err != nil {
		return nil, fmt.Errorf("scan segment: %w", err)
	}
	return seg, nil
}

// UpdateRoutineAdaptations rewrites a routine's complexity parameters and
// applied-adaptation record after review directives adjust an existing day.
func (s *SQLiteStore) UpdateRoutineAdaptations(ctx context.Context, routineID string, complexity types.RoutineComplexity, adaptationsApplied []string) error {
	adaptationsJSON, err := marshalList(adaptationsApplied)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE routines
		SET complexity = ?, task_count = ?, deep_work_blocks = ?, break_frequency = ?, multitasking = ?, adaptations_applied = ?
		WHERE id = ?
	`, string(complexity.Level), complexity.TaskCount, complexity.DeepWorkBlocks,
		complexity.BreakFrequency, boolInt(complexity.MultitaskingAllowed),
		adaptationsJSON, routineID)
	if err != nil {
		return fmt.Errorf("update routine adaptations: %w", err)
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

// SetRoutineCompleted marks a routine's overall completion flag.
func (s *SQLiteStore) SetRoutineCompleted(ctx context.Context, routineID string, completed bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE routines SET completed = ? WHERE id = ?
	`, boolInt(completed), routineID)
	if err != nil {
		return fmt.Errorf("set routine completed: %w", err)
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

func (s *SQLiteStore) scanRoutineWithSegments(ctx context.Context, row *sql.Row) (*types.DailyRoutine, error) {
	routine, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan routine: %w", err)
	}

	segments, err := s.loadSegments(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	routine.Segments = segments
	return routine, nil
}

func (s *SQLiteStore) loadSegments(ctx context.Context, routineID string) ([]types.RoutineSegment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, start_time, end_time, type, activity, duration_min, priority, completed, focus_quality
		FROM routine_segments
		WHERE routine_id = ?
		ORDER BY position ASC
	`, routineID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	segments := make([]types.RoutineSegment, 0)
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, *seg)
	}
	return segments, rows.Err()
}

func scanRoutine(scanner interface{ Scan(...any) error }) (*types.DailyRoutine, error) {
	var routine types.DailyRoutine
	var day, level, adaptationsJSON, createdAt string
	var completed, multitasking int

	err := scanner.Scan(
		&routine.ID,
		&routine.UserID,
		&day,
		&level,
		&routine.Complexity.TaskCount,
		&routine.Complexity.DeepWorkBlocks,
		&routine.Complexity.BreakFrequency,
		&multitasking,
		&adaptationsJSON,
		&completed,
		&routine.EstimatedMinutes,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	routine.Day = types.Day(day)
	routine.Completed = completed != 0
	routine.CreatedAt = parseTimestamp(createdAt)
	routine.Complexity.Level = types.ComplexityLevel(level)
	routine.Complexity.MultitaskingAllowed = multitasking != 0

	adaptations, err := unmarshalList(adaptationsJSON)
	if err != nil {
		return nil, err
	}
	routine.AdaptationsApplied = adaptations
	return &routine, nil
}

func scanSegment(scanner interface{ Scan(...any) error }) (*types.RoutineSegment, error) {
	var seg types.RoutineSegment
	var segType, priority, focus string
	var completed int

	err := scanner.Scan(
		&seg.ID,
		&seg.Position,
		&seg.StartTime,
		&seg.EndTime,
		&segType,
		&seg.Activity,
		&seg.DurationMin,
		&priority,
		&completed,
		&focus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seg.Type = types.SegmentType(segType)
	seg.Priority = types.Priority(priority)
	seg.Completed = completed != 0
	seg.FocusQuality = types.FocusQuality(focus)
	return &seg, nil
}
