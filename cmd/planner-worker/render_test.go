package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/scheduler"
)

func TestRenderPlanListsRankedAssignments(t *testing.T) {
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	slot := now.Add(2 * time.Hour)
	result := &models.PlanningResult{
		UserID: "u1",
		Assignments: []models.Assignment{
			{ID: "a1", Title: "Essay", DueDate: now.Add(48 * time.Hour), Priority: 4, EstimatedHours: 3},
			{ID: "a2", Title: "Lab report", DueDate: now.Add(120 * time.Hour), Priority: 2, EstimatedHours: 1.5},
		},
		Suggestions: []models.StudySuggestion{{AssignmentID: "a1", Title: "Essay", SuggestedTimes: []time.Time{slot}}},
		StudyPlan: models.StudyPlan{
			UrgentCount:      1,
			UpcomingCount:    1,
			TotalHoursNeeded: 4.5,
			Recommendations:  []string{"Start with Essay"},
		},
		GeneratedAt: now,
	}

	var buf bytes.Buffer
	renderPlan(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Essay")
	assert.Contains(t, out, "Lab report")
	assert.Contains(t, out, "2024-03-04 10:00")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "Start with Essay")
	assert.NotContains(t, out, "reminders sent")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, scheduler.Summary{Job: scheduler.JobDeadlines, Users: 3, Succeeded: 2, Failed: 1, Reminders: 5})

	out := buf.String()
	assert.Contains(t, out, "deadlines")
	assert.Contains(t, out, "5")
}
