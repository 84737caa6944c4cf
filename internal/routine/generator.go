package routine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
)

const (
	// slotCount is the fixed number of segments per routine. The
	// complexity tier's task count stays advisory; the day is always
	// structured as morning, afternoon, and evening blocks.
	slotCount = 3

	// slotBufferMin separates adjacent slots.
	slotBufferMin = 30

	minutesPerDay = 24 * 60
)

// ErrNoTime indicates the wake/sleep window cannot fit three slots.
var ErrNoTime = errors.New("not enough time between wake and sleep for a routine")

// slotPlan fixes the semantic type and priority of each slot position.
var slotPlan = [slotCount]struct {
	segType  types.SegmentType
	priority types.Priority
}{
	{types.SegmentDeepWork, types.PriorityHigh},
	{types.SegmentSkillPractice, types.PriorityHigh},
	{types.SegmentStudy, types.PriorityMedium},
}

// genericActivities are fallbacks when the matching goal list is empty.
var genericActivities = map[types.SegmentType]string{
	types.SegmentDeepWork:      "Focused work on your most important project",
	types.SegmentSkillPractice: "Deliberate practice on a skill you are building",
	types.SegmentStudy:         "Study and review session",
}

// Generator allocates a day into routine segments. The random source
// drives goal sampling only; structure is deterministic.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator with a time-seeded random source.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a deterministic random source.
func NewSeeded(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate allocates the profile's available time on the given day into
// exactly three non-overlapping segments sized by the available hours
// and bounded by the wake/sleep window. Overrides replace the profile's
// schedule fields for this invocation only. Returns the segments and
// the estimated completion time in minutes.
func (g *Generator) Generate(profile types.UserProfile, overrides *types.GenerateOverrides, day types.Day) ([]types.RoutineSegment, int, error) {
	wakeStr, sleepStr, availableHours := resolveSchedule(profile, overrides)

	wake, err := parseClock(wakeStr)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid wake time: %w", err)
	}
	sleep, err := parseClock(sleepStr)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid sleep time: %w", err)
	}

	// Sleep earlier than wake means the day rolls past midnight.
	if sleep <= wake {
		sleep += minutesPerDay
	}

	window := sleep - wake - (slotCount-1)*slotBufferMin
	available := int(availableHours * 60)
	if available > window {
		available = window
	}

	slotDur := available / slotCount
	if slotDur <= 0 {
		return nil, 0, ErrNoTime
	}

	weekend := isWeekend(day)
	segments := make([]types.RoutineSegment, 0, slotCount)
	cursor := wake
	total := 0

	for i := 0; i < slotCount; i++ {
		plan := slotPlan[i]
		seg := types.RoutineSegment{
			Position:    i,
			StartTime:   formatClock(cursor),
			EndTime:     formatClock(cursor + slotDur),
			Type:        plan.segType,
			Activity:    g.pickActivity(profile, plan.segType, weekend),
			DurationMin: slotDur,
			Priority:    plan.priority,
		}
		segments = append(segments, seg)
		total += slotDur
		cursor += slotDur + slotBufferMin
	}

	if err := validate(segments, available); err != nil {
		return nil, 0, err
	}

	return segments, total, nil
}

// resolveSchedule applies caller overrides on top of the profile.
func resolveSchedule(profile types.UserProfile, overrides *types.GenerateOverrides) (wake, sleep string, hours float64) {
	wake = profile.WakeTime
	sleep = profile.SleepTime
	hours = profile.AvailableHours

	if overrides != nil {
		if overrides.WakeTime != "" {
			wake = overrides.WakeTime
		}
		if overrides.SleepTime != "" {
			sleep = overrides.SleepTime
		}
		if overrides.AvailableHours != nil {
			hours = *overrides.AvailableHours
		}
	}
	return wake, sleep, hours
}

// pickActivity samples uniformly from the goal list matching the
// segment type, falling back to a generic description.
func (g *Generator) pickActivity(profile types.UserProfile, segType types.SegmentType, weekend bool) string {
	var goals []string
	switch segType {
	case types.SegmentSkillPractice:
		goals = profile.SkillGoals
	default:
		goals = profile.AcademicGoals
	}

	if len(goals) == 0 {
		text := genericActivities[segType]
		if weekend && segType == types.SegmentStudy {
			text = "Light weekend review session"
		}
		return text
	}
	return goals[g.rng.Intn(len(goals))]
}

// validate asserts the structural invariants the generator promises:
// exactly three slots, no overlap, non-negative durations, and a total
// within the available budget.
func validate(segments []types.RoutineSegment, available int) error {
	if len(segments) != slotCount {
		return fmt.Errorf("expected %d segments, got %d", slotCount, len(segments))
	}

	total := 0
	prevEnd := -1
	for i, seg := range segments {
		if seg.DurationMin < 0 {
			return fmt.Errorf("segment %d has negative duration", i)
		}
		start, err := parseWrapped(seg.StartTime, prevEnd)
		if err != nil {
			return err
		}
		if start < prevEnd {
			return fmt.Errorf("segment %d overlaps previous segment", i)
		}
		prevEnd = start + seg.DurationMin
		total += seg.DurationMin
	}

	if total > available {
		return fmt.Errorf("segments total %d min exceeds available %d min", total, available)
	}
	return nil
}

// parseClock converts HH:MM to minutes from midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock converts minutes from midnight to HH:MM, wrapping values
// past midnight back onto the clock.
func formatClock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// parseWrapped parses a clock value that may have wrapped past
// midnight, lifting it above the previous segment's end.
func parseWrapped(s string, floor int) (int, error) {
	v, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	for v < floor {
		v += minutesPerDay
	}
	return v, nil
}

func isWeekend(day types.Day) bool {
	wd := day.Time().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
