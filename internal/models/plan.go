package models

import "time"

// StudyPlan summarises outstanding work by urgency tier.
type StudyPlan struct {
	OverdueCount     int      `json:"overdue_count"`
	UrgentCount      int      `json:"urgent_count"`
	UpcomingCount    int      `json:"upcoming_count"`
	FutureCount      int      `json:"future_count"`
	TotalHoursNeeded float64  `json:"total_hours_needed"`
	Recommendations  []string `json:"recommendations"`
}

// StudySuggestion lists proposed study start times for one assignment.
type StudySuggestion struct {
	AssignmentID   string      `json:"assignment_id"`
	Title          string      `json:"title"`
	SuggestedTimes []time.Time `json:"suggested_times"`
	EstimatedHours float64     `json:"estimated_hours"`
}

// ReminderRecord describes a deadline reminder that was delivered.
type ReminderRecord struct {
	AssignmentID string    `json:"assignment_id"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
}

// PlanningStage tags how far a planning run progressed.
type PlanningStage string

const (
	PlanningStageInitialized PlanningStage = "initialized"
	PlanningStageFetched     PlanningStage = "state_fetched"
	PlanningStagePrioritized PlanningStage = "prioritization_complete"
	PlanningStageSuggested   PlanningStage = "schedule_suggestions_generated"
	PlanningStageReminded    PlanningStage = "reminders_sent"
	PlanningStageComplete    PlanningStage = "complete"
)

// PlanningRunState is threaded through the stages of a single planning run and discarded afterwards.
type PlanningRunState struct {
	UserID         string
	Now            time.Time
	PreferredHours []int
	Assignments    []Assignment
	Courses        []Course
	CalendarEvents []CalendarEvent
	Suggestions    []StudySuggestion
	Reminders      []ReminderRecord
	Plan           StudyPlan
	Stage          PlanningStage
}

// PlanningResult is returned to callers of a planning run.
type PlanningResult struct {
	UserID        string            `json:"user_id"`
	Assignments   []Assignment      `json:"assignments"`
	Suggestions   []StudySuggestion `json:"suggestions"`
	StudyPlan     StudyPlan         `json:"study_plan"`
	RemindersSent []ReminderRecord  `json:"reminders_sent"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
