package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/scheduler"
	"github.com/noah-isme/studyplanner-api/internal/service"
)

const timeLayout = "2006-01-02 15:04"

func renderSummary(w io.Writer, s scheduler.Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Job", "Users", "Succeeded", "Failed", "Reminders", "Duration"})
	tw.AppendRow(table.Row{s.Job, s.Users, s.Succeeded, s.Failed, s.Reminders, s.Duration.Round(time.Millisecond)})
	tw.Render()
}

func renderPlan(w io.Writer, result *models.PlanningResult) {
	suggested := make(map[string][]time.Time, len(result.Suggestions))
	for _, s := range result.Suggestions {
		suggested[s.AssignmentID] = s.SuggestedTimes
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Study plan for " + result.UserID)
	tw.AppendHeader(table.Row{"#", "Title", "Due", "Priority", "Hours", "Score", "Suggested"})
	for i, a := range result.Assignments {
		tw.AppendRow(table.Row{
			i + 1,
			a.Title,
			a.DueDate.UTC().Format(timeLayout),
			a.Priority,
			fmt.Sprintf("%.1f", a.EstimatedHours),
			fmt.Sprintf("%.1f", service.PriorityScore(a, result.GeneratedAt)),
			formatTimes(suggested[a.ID]),
		})
	}
	plan := result.StudyPlan
	tw.AppendFooter(table.Row{"", fmt.Sprintf("overdue %d / urgent %d / upcoming %d / future %d",
		plan.OverdueCount, plan.UrgentCount, plan.UpcomingCount, plan.FutureCount), "", "", fmt.Sprintf("%.1f", plan.TotalHoursNeeded), "", ""})
	tw.Render()

	if len(plan.Recommendations) > 0 {
		fmt.Fprintln(w, strings.Join(plan.Recommendations, "\n"))
	}
	if len(result.RemindersSent) > 0 {
		fmt.Fprintf(w, "reminders sent: %d\n", len(result.RemindersSent))
	}
}

func formatTimes(times []time.Time) string {
	parts := make([]string, 0, len(times))
	for _, t := range times {
		parts = append(parts, t.UTC().Format(timeLayout))
	}
	return strings.Join(parts, ", ")
}
