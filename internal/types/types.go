package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayFormat is the canonical calendar-date layout used across the engine.
const DayFormat = "2006-01-02"

// Day is a calendar date in YYYY-MM-DD form. All routine, review, and
// completion records are keyed by Day rather than a full timestamp.
type Day string

// ParseDay validates and returns a Day from its string form.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(DayFormat, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// DayOf truncates a timestamp to its calendar date.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayFormat))
}

// Time returns the midnight UTC instant of the day.
// Invalid days return the zero time.
func (d Day) Time() time.Time {
	t, _ := time.Parse(DayFormat, string(d))
	return t
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return DayOf(d.Time().AddDate(0, 0, 1))
}

// Sub returns the number of whole days from other to d.
func (d Day) Sub(other Day) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// HabitFrequency is how often a habit recurs.
type HabitFrequency string

const (
	FrequencyDaily  HabitFrequency = "daily"
	FrequencyWeekly HabitFrequency = "weekly"
)

// CompletionQuality is the optional quality tier on a completion record.
type CompletionQuality string

const (
	QualityExcellent CompletionQuality = "excellent"
	QualityGood      CompletionQuality = "good"
	QualityPoor      CompletionQuality = "poor"
)

// Habit is a user-defined recurring behavior.
type Habit struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	Frequency    HabitFrequency `json:"frequency"`
	Cue          string         `json:"cue,omitempty"`
	Reward       string         `json:"reward,omitempty"`
	StackedAfter string         `json:"stacked_after,omitempty"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewHabit is the input type for creating a habit.
type NewHabit struct {
	Name         string         `json:"name"`
	Frequency    HabitFrequency `json:"frequency"`
	Cue          string         `json:"cue,omitempty"`
	Reward       string         `json:"reward,omitempty"`
	StackedAfter string         `json:"stacked_after,omitempty"`
}

// HabitCompletionRecord is one row per (habit, day). A second submission
// for the same day updates the existing record.
type HabitCompletionRecord struct {
	ID        string            `json:"id"`
	HabitID   string            `json:"habit_id"`
	Day       Day               `json:"day"`
	Completed bool              `json:"completed"`
	Quality   CompletionQuality `json:"quality,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CompletionPayload is the input type for recording a habit completion.
type CompletionPayload struct {
	Day       string            `json:"day"`
	Completed bool              `json:"completed"`
	Quality   CompletionQuality `json:"quality,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// HabitStreak is a derived view over a habit's completion history.
// It is recomputed on read and never persisted.
type HabitStreak struct {
	HabitID               string  `json:"habit_id"`
	HabitName             string  `json:"habit_name,omitempty"`
	CurrentStreak         int     `json:"current_streak"`
	LongestStreak         int     `json:"longest_streak"`
	LastCompleted         *Day    `json:"last_completed,omitempty"`
	ConsistencyPercentage float64 `json:"consistency_percentage"`
}

// SegmentType is the semantic type of a routine segment.
type SegmentType string

const (
	SegmentDeepWork      SegmentType = "deep_work"
	SegmentStudy         SegmentType = "study"
	SegmentSkillPractice SegmentType = "skill_practice"
	SegmentBreak         SegmentType = "break"
	SegmentPersonal      SegmentType = "personal"
)

// Priority orders segments within a routine.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// FocusQuality is the self-reported focus tag on a completed segment.
type FocusQuality string

const (
	FocusHigh   FocusQuality = "high"
	FocusMedium FocusQuality = "medium"
	FocusLow    FocusQuality = "low"
)

// PerformanceSnapshot is a window-scoped aggregate of recent signals.
// Ephemeral: recomputed per generation request, never persisted.
type PerformanceSnapshot struct {
	CompletionRate         float64       `json:"completion_rate"`
	ConsistencyScore       float64       `json:"consistency_score"`
	RecentFailures         int           `json:"recent_failures"`
	RecentSuccesses        int           `json:"recent_successes"`
	AverageFocusQuality    float64       `json:"average_focus_quality"`
	PreferredActivityTypes []SegmentType `json:"preferred_activity_types"`
}

// ComplexityLevel is one of the three routine-complexity tiers.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// Structural bounds for RoutineComplexity parameters.
const (
	MinTaskCount      = 3
	MaxTaskCount      = 10
	MinDeepWorkBlocks = 1
	MaxDeepWorkBlocks = 4
	MinBreakFrequency = 45
	MaxBreakFrequency = 150
)

// RoutineComplexity carries the structural parameters of a tier.
// TaskCount is advisory: the generator emits a fixed three-slot day and
// uses TaskCount only for incremental adaptation arithmetic.
type RoutineComplexity struct {
	Level               ComplexityLevel `json:"level"`
	TaskCount           int             `json:"task_count"`
	DeepWorkBlocks      int             `json:"deep_work_blocks"`
	BreakFrequency      int             `json:"break_frequency"`
	MultitaskingAllowed bool            `json:"multitasking_allowed"`
}

// RoutineSegment is a time-bounded activity block within a routine.
// Start and end are HH:MM clock values; an end earlier than its start
// signifies rollover past midnight.
type RoutineSegment struct {
	ID           string       `json:"id"`
	Position     int          `json:"position"`
	StartTime    string       `json:"start_time"`
	EndTime      string       `json:"end_time"`
	Type         SegmentType  `json:"type"`
	Activity     string       `json:"activity"`
	DurationMin  int          `json:"duration_min"`
	Priority     Priority     `json:"priority"`
	Completed    bool         `json:"completed"`
	FocusQuality FocusQuality `json:"focus_quality,omitempty"`
}

// DailyRoutine is the generated schedule for one user on one date.
// Exactly one routine may exist per (user, day).
type DailyRoutine struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	Day                Day               `json:"day"`
	Segments           []RoutineSegment  `json:"segments"`
	Complexity         RoutineComplexity `json:"complexity"`
	AdaptationsApplied []string          `json:"adaptations_applied"`
	Completed          bool              `json:"completed"`
	EstimatedMinutes   int               `json:"estimated_minutes"`
	CreatedAt          time.Time         `json:"created_at"`
}

// EveningReview is the once-per-day reflection record.
type EveningReview struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Day           Day       `json:"day"`
	Accomplished  []string  `json:"accomplished"`
	Missed        []string  `json:"missed"`
	MissedReasons []string  `json:"missed_reasons"`
	Tomorrow      []string  `json:"tomorrow"`
	Mood          int       `json:"mood"`
	EnergyLevel   int       `json:"energy_level"`
	Insights      string    `json:"insights,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEveningReview is the input type for creating a review.
type NewEveningReview struct {
	Day           string   `json:"day"`
	Accomplished  []string `json:"accomplished"`
	Missed        []string `json:"missed"`
	MissedReasons []string `json:"missed_reasons"`
	Tomorrow      []string `json:"tomorrow"`
	Mood          int      `json:"mood"`
	EnergyLevel   int      `json:"energy_level"`
	Insights      string   `json:"insights,omitempty"`
}

// AdaptationType classifies a derived routine adjustment.
type AdaptationType string

const (
	AdaptSimplify           AdaptationType = "simplify"
	AdaptIncreaseComplexity AdaptationType = "increase_complexity"
	AdaptAdjustTiming       AdaptationType = "adjust_timing"
	AdaptChangeFocus        AdaptationType = "change_focus"
)

// RoutineAdaptation is a derived directive biasing future routine
// structure. ImpactScore is in (0, 1].
type RoutineAdaptation struct {
	Type        AdaptationType `json:"type"`
	Description string         `json:"description"`
	Reason      string         `json:"reason"`
	ImpactScore float64        `json:"impact_score"`
}

// PendingAdaptation is a queued adaptation awaiting the next generation
// run for its (user, day).
type PendingAdaptation struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Day        Day               `json:"day"`
	Adaptation RoutineAdaptation `json:"adaptation"`
	CreatedAt  time.Time         `json:"created_at"`
	ConsumedAt *time.Time        `json:"consumed_at,omitempty"`
}

// UserProfile holds the schedule and goal context needed for generation.
type UserProfile struct {
	UserID         string   `json:"user_id"`
	WakeTime       string   `json:"wake_time"`
	SleepTime      string   `json:"sleep_time"`
	AvailableHours float64  `json:"available_hours"`
	AcademicGoals  []string `json:"academic_goals"`
	SkillGoals     []string `json:"skill_goals"`
	EnergyPattern  string   `json:"energy_pattern,omitempty"`
}

// GenerateOverrides are optional caller overrides for one generation.
type GenerateOverrides struct {
	AvailableHours *float64 `json:"available_hours,omitempty"`
	WakeTime       string   `json:"wake_time,omitempty"`
	SleepTime      string   `json:"sleep_time,omitempty"`
}

// GenerateRequest is the payload for the generate-routine operation.
type GenerateRequest struct {
	Day       string             `json:"day"`
	Overrides *GenerateOverrides `json:"overrides,omitempty"`
}

// RoutineResult is the outcome of a generate-routine call.
type RoutineResult struct {
	Routine            DailyRoutine        `json:"routine"`
	Complexity         RoutineComplexity   `json:"complexity"`
	AdaptationsApplied []RoutineAdaptation `json:"adaptations_applied"`
	EstimatedMinutes   int                 `json:"estimated_minutes"`
	Existing           bool                `json:"existing"`
}

// ReviewResult is the outcome of a create-evening-review call.
// Adaptations and GeneratedInsights are best-effort enrichment: they may
// be empty when a downstream step degraded.
type ReviewResult struct {
	Review            EveningReview       `json:"review"`
	Adaptations       []RoutineAdaptation `json:"adaptations"`
	GeneratedInsights []string            `json:"generated_insights"`
}

// SegmentUpdate is the payload for the update-segment operation.
type SegmentUpdate struct {
	Completed    bool         `json:"completed"`
	FocusQuality FocusQuality `json:"focus_quality,omitempty"`
}

// BehaviorEvent is a write-only append-log record of engine activity.
type BehaviorEvent struct {
	Sequence  int64           `json:"sequence,omitempty"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	EntityID  string          `json:"entity_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StoreStats holds aggregate store statistics for the health endpoint.
type StoreStats struct {
	HabitCount   int64 `json:"habit_count"`
	RoutineCount int64 `json:"routine_count"`
	ReviewCount  int64 `json:"review_count"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	HabitCount   int64  `json:"habit_count"`
	RoutineCount int64  `json:"routine_count"`
	ReviewCount  int64  `json:"review_count"`
}

// MarshalJSON ensures nil slices in DailyRoutine marshal as [] not null.
func (d DailyRoutine) MarshalJSON() ([]byte, error) {
	if d.Segments == nil {
		d.Segments = []RoutineSegment{}
	}
	if d.AdaptationsApplied == nil {
		d.AdaptationsApplied = []string{}
	}
	type Alias DailyRoutine
	return json.Marshal(Alias(d))
}

// MarshalJSON ensures nil slices in EveningReview marshal as [] not null.
func (e EveningReview) MarshalJSON() ([]byte, error) {
	if e.Accomplished == nil {
		e.Accomplished = []string{}
	}
	if e.Missed == nil {
		e.Missed = []string{}
	}
	if e.MissedReasons == nil {
		e.MissedReasons = []string{}
	}
	if e.Tomorrow == nil {
		e.Tomorrow = []string{}
	}
	type Alias EveningReview
	return json.Marshal(Alias(e))
}

// MarshalJSON ensures nil slices in ReviewResult marshal as [] not null.
func (r ReviewResult) MarshalJSON() ([]byte, error) {
	if r.Adaptations == nil {
		r.Adaptations = []RoutineAdaptation{}
	}
	if r.GeneratedInsights == nil {
		r.GeneratedInsights = []string{}
	}
	type Alias ReviewResult
	return json.Marshal(Alias(r))
}

// MarshalJSON ensures nil slices in PerformanceSnapshot marshal as [] not null.
func (p PerformanceSnapshot) MarshalJSON() ([]byte, error) {
	if p.PreferredActivityTypes == nil {
		p.PreferredActivityTypes = []SegmentType{}
	}
	type Alias PerformanceSnapshot
	return json.Marshal(Alias(p))
}
