package validation

import (
	"time"

	"github.com/hyperengineering/cadence/internal/types"
)

const (
	maxNameLength       = 200
	maxNotesLength      = 2000
	maxListItems        = 50
	maxListItemLength   = 500
	maxReflectionLength = 5000
)

// ValidateDay returns an error if the value is not a YYYY-MM-DD date.
func ValidateDay(field, value string) *ValidationError {
	if _, err := time.Parse(types.DayFormat, value); err != nil {
		return &ValidationError{
			Field:   field,
			Message: "must be a date in YYYY-MM-DD format",
		}
	}
	return nil
}

// ValidateClock returns an error if the value is not an HH:MM clock time.
func ValidateClock(field, value string) *ValidationError {
	if _, err := time.Parse("15:04", value); err != nil {
		return &ValidationError{
			Field:   field,
			Message: "must be a time in HH:MM format",
		}
	}
	return nil
}

func validateStringList(c *Collector, field string, values []string) {
	if len(values) > maxListItems {
		c.Add(&ValidationError{Field: field, Message: "too many items"})
		return
	}
	for _, v := range values {
		c.Add(ValidateUTF8(field, v))
		c.Add(ValidateNoNullBytes(field, v))
		c.Add(ValidateMaxLength(field, v, maxListItemLength))
	}
}

// ValidateNewHabit checks a habit creation payload.
func ValidateNewHabit(input types.NewHabit) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("name", input.Name))
	c.Add(ValidateUTF8("name", input.Name))
	c.Add(ValidateNoNullBytes("name", input.Name))
	c.Add(ValidateMaxLength("name", input.Name, maxNameLength))

	if input.Frequency != "" {
		c.Add(ValidateEnum("frequency", string(input.Frequency), []string{
			string(types.FrequencyDaily), string(types.FrequencyWeekly),
		}))
	}
	if input.StackedAfter != "" {
		c.Add(ValidateULID("stacked_after", input.StackedAfter))
	}
	c.Add(ValidateMaxLength("cue", input.Cue, maxNameLength))
	c.Add(ValidateMaxLength("reward", input.Reward, maxNameLength))

	return c.Errors()
}

// ValidateCompletionPayload checks a habit completion payload.
func ValidateCompletionPayload(input types.CompletionPayload) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("day", input.Day))
	if input.Day != "" {
		c.Add(ValidateDay("day", input.Day))
	}
	if input.Quality != "" {
		c.Add(ValidateEnum("quality", string(input.Quality), []string{
			string(types.QualityExcellent), string(types.QualityGood), string(types.QualityPoor),
		}))
	}
	c.Add(ValidateUTF8("notes", input.Notes))
	c.Add(ValidateNoNullBytes("notes", input.Notes))
	c.Add(ValidateMaxLength("notes", input.Notes, maxNotesLength))

	return c.Errors()
}

// ValidateNewEveningReview checks a review creation payload.
func ValidateNewEveningReview(input types.NewEveningReview) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("day", input.Day))
	if input.Day != "" {
		c.Add(ValidateDay("day", input.Day))
	}
	c.Add(ValidateIntRange("mood", input.Mood, 1, 10))
	c.Add(ValidateIntRange("energy_level", input.EnergyLevel, 1, 10))

	validateStringList(&c, "accomplished", input.Accomplished)
	validateStringList(&c, "missed", input.Missed)
	validateStringList(&c, "missed_reasons", input.MissedReasons)
	validateStringList(&c, "tomorrow", input.Tomorrow)

	c.Add(ValidateUTF8("insights", input.Insights))
	c.Add(ValidateNoNullBytes("insights", input.Insights))
	c.Add(ValidateMaxLength("insights", input.Insights, maxReflectionLength))

	return c.Errors()
}

// ValidateGenerateRequest checks a routine generation payload.
func ValidateGenerateRequest(input types.GenerateRequest) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("day", input.Day))
	if input.Day != "" {
		c.Add(ValidateDay("day", input.Day))
	}
	if o := input.Overrides; o != nil {
		if o.WakeTime != "" {
			c.Add(ValidateClock("overrides.wake_time", o.WakeTime))
		}
		if o.SleepTime != "" {
			c.Add(ValidateClock("overrides.sleep_time", o.SleepTime))
		}
		if o.AvailableHours != nil {
			c.Add(ValidateRange("overrides.available_hours", *o.AvailableHours, 0.5, 24))
		}
	}

	return c.Errors()
}

// ValidateProfile checks a profile upsert payload.
func ValidateProfile(input types.UserProfile) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("wake_time", input.WakeTime))
	if input.WakeTime != "" {
		c.Add(ValidateClock("wake_time", input.WakeTime))
	}
	c.Add(ValidateRequired("sleep_time", input.SleepTime))
	if input.SleepTime != "" {
		c.Add(ValidateClock("sleep_time", input.SleepTime))
	}
	c.Add(ValidateRange("available_hours", input.AvailableHours, 0.5, 24))

	validateStringList(&c, "academic_goals", input.AcademicGoals)
	validateStringList(&c, "skill_goals", input.SkillGoals)

	return c.Errors()
}

// ValidateSegmentUpdate checks a segment completion payload.
func ValidateSegmentUpdate(input types.SegmentUpdate) []ValidationError {
	var c Collector

	if input.FocusQuality != "" {
		c.Add(ValidateEnum("focus_quality", string(input.FocusQuality), []string{
			string(types.FocusHigh), string(types.FocusMedium), string(types.FocusLow),
		}))
	}

	return c.Errors()
}
