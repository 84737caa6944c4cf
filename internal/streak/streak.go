package streak

import (
	"github.com/hyperengineering/cadence/internal/types"
)

// Compute derives streak metrics from one habit's completion history.
// Records must be ordered by day descending; the function is pure over
// its input and touches no clock beyond the supplied today value.
//
// The current streak walks backward from the most recent record and
// breaks on the first not-completed record or calendar gap. The longest
// streak scans the full history ascending, resetting on not-completed
// records. Consistency is completed/total over the trailing windowDays
// window ending at today, expressed 0-100.
func Compute(records []types.HabitCompletionRecord, today types.Day, windowDays int) types.HabitStreak {
	result := types.HabitStreak{}
	if len(records) == 0 {
		return result
	}

	result.CurrentStreak = currentStreak(records)
	result.LongestStreak = longestStreak(records)
	result.LastCompleted = lastCompleted(records)
	result.ConsistencyPercentage = consistency(records, today, windowDays)
	return result
}

// currentStreak counts consecutive completed days ending at the most
// recent record. A missing calendar day between records breaks the run.
func currentStreak(records []types.HabitCompletionRecord) int {
	count := 0
	for i, rec := range records {
		if !rec.Completed {
			break
		}
		if i > 0 {
			// records[i-1] is the more recent of the pair
			if records[i-1].Day.Sub(rec.Day) != 1 {
				break
			}
		}
		count++
	}
	return count
}

// longestStreak finds the maximum run of consecutive completed records
// anywhere in history, scanning in ascending day order.
func longestStreak(records []types.HabitCompletionRecord) int {
	longest, run := 0, 0
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Completed {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// lastCompleted returns the most recent completed day, or nil.
func lastCompleted(records []types.HabitCompletionRecord) *types.Day {
	for _, rec := range records {
		if rec.Completed {
			day := rec.Day
			return &day
		}
	}
	return nil
}

// consistency returns 100 * completed / total over records whose day
// falls within the trailing window ending at today. Zero when the
// window holds no records.
func consistency(records []types.HabitCompletionRecord, today types.Day, windowDays int) float64 {
	if windowDays <= 0 {
		return 0
	}

	var completed, total int
	for _, rec := range records {
		age := today.Sub(rec.Day)
		if age < 0 || age >= windowDays {
			continue
		}
		total++
		if rec.Completed {
			completed++
		}
	}

	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}
