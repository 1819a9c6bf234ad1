package service

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

const (
	// MaxSuggestionsPerAssignment caps the study start times proposed for one assignment.
	MaxSuggestionsPerAssignment = 5
	maxHoursFactor              = 2.0
)

// DefaultPreferredHours are the hours of day (9-10am, 2-5pm) preferred when a user has none.
var DefaultPreferredHours = []int{9, 10, 14, 15, 16, 17}

// Recommendation texts emitted by AggregateStudyPlan.
const (
	RecommendationOverdue        = "Focus on overdue assignments first"
	RecommendationBreakDown      = "Break down large assignments into smaller tasks"
	RecommendationPreferredHours = "Schedule study sessions during your preferred hours"
)

const largeAssignmentHours = 5.0

// DaysUntilDue returns the whole number of days until due, floored, so anything overdue is negative.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Floor(due.Sub(now).Hours() / 24))
}

func urgencyFor(days int) float64 {
	switch {
	case days <= 0:
		return 10.0
	case days <= 1:
		return 8.0
	case days <= 3:
		return 5.0
	case days <= 7:
		return 3.0
	default:
		return 1.0
	}
}

// PriorityScore ranks an assignment by urgency. Higher is more urgent.
func PriorityScore(a models.Assignment, now time.Time) float64 {
	urgency := urgencyFor(DaysUntilDue(a.DueDate, now))
	hoursFactor := math.Min(a.EstimatedHours/10.0, maxHoursFactor)
	return float64(a.Priority) * urgency * (1 + hoursFactor)
}

// PrioritizeAssignments returns a copy of assignments sorted by descending PriorityScore.
// Equal scores keep their input order.
func PrioritizeAssignments(assignments []models.Assignment, now time.Time) []models.Assignment {
	type scored struct {
		assignment models.Assignment
		score      float64
	}
	ranked := make([]scored, len(assignments))
	for i, a := range assignments {
		ranked[i] = scored{assignment: a, score: PriorityScore(a, now)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	out := make([]models.Assignment, len(ranked))
	for i, r := range ranked {
		out[i] = r.assignment
	}
	return out
}

// SuggestStudyTimes greedily picks study start times from chronologically ordered free slots.
// A slot is taken when it starts on a preferred hour (UTC) or alone covers the whole estimate.
func SuggestStudyTimes(a models.Assignment, slots []models.FreeSlot, preferredHours []int) []time.Time {
	if len(preferredHours) == 0 {
		preferredHours = DefaultPreferredHours
	}
	preferred := make(map[int]struct{}, len(preferredHours))
	for _, h := range preferredHours {
		preferred[h] = struct{}{}
	}

	suggestions := make([]time.Time, 0, MaxSuggestionsPerAssignment)
	remaining := a.EstimatedHours
	for _, slot := range slots {
		if remaining <= 0 || len(suggestions) >= MaxSuggestionsPerAssignment {
			break
		}
		_, isPreferred := preferred[slot.Start.UTC().Hour()]
		if !isPreferred && slot.DurationHours < a.EstimatedHours {
			continue
		}
		suggestions = append(suggestions, slot.Start)
		remaining -= math.Min(slot.DurationHours, remaining)
	}
	return suggestions
}

// AggregateStudyPlan buckets assignments into urgency tiers and derives recommendations.
// Only the overdue tier and the hour total ignore completed work; the other tiers count every assignment.
func AggregateStudyPlan(assignments []models.Assignment, now time.Time) models.StudyPlan {
	plan := models.StudyPlan{}
	large := false
	for _, a := range assignments {
		days := DaysUntilDue(a.DueDate, now)
		if !a.DueDate.After(now) && !a.IsCompleted() {
			plan.OverdueCount++
		}
		switch {
		case days >= 0 && days <= 3:
			plan.UrgentCount++
		case days > 3 && days <= 7:
			plan.UpcomingCount++
		case days > 7:
			plan.FutureCount++
		}
		if !a.IsCompleted() {
			plan.TotalHoursNeeded += a.EstimatedHours
		}
		if a.EstimatedHours > largeAssignmentHours {
			large = true
		}
	}

	plan.Recommendations = make([]string, 0, 3)
	if plan.OverdueCount > 0 {
		plan.Recommendations = append(plan.Recommendations, RecommendationOverdue)
	}
	if large {
		plan.Recommendations = append(plan.Recommendations, RecommendationBreakDown)
	}
	plan.Recommendations = append(plan.Recommendations, RecommendationPreferredHours)
	return plan
}
