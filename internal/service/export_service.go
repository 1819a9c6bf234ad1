package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/export"
)

// ExportFormat enumerates supported plan export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var planExportHeaders = []string{"Rank", "Title", "Due", "Priority", "Hours", "Status", "Score", "Suggested Times"}

type planSource interface {
	PlanForExport(ctx context.Context, userID string) (*models.PlanningResult, error)
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered plan ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a user's study plan as CSV or PDF.
type ExportService struct {
	plans  planSource
	csv    datasetRenderer
	pdf    datasetRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the default exporters.
func NewExportService(plans planSource, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{plans: plans, csv: csv, pdf: pdf, logger: logger}
}

// ParseExportFormat normalises a format query value, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ExportPlan renders the latest plan, running a fresh one when none is cached.
func (s *ExportService) ExportPlan(ctx context.Context, userID string, format ExportFormat) (*ExportFile, error) {
	result, err := s.plans.PlanForExport(ctx, userID)
	if err != nil {
		return nil, err
	}

	renderer := s.csv
	if format == ExportFormatPDF {
		renderer = s.pdf
	}
	title := fmt.Sprintf("Study plan generated %s", result.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	payload, err := renderer.Render(BuildPlanDataset(result), title)
	if err != nil {
		s.logger.Error("failed to render plan export", zap.String("user_id", userID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("study_plan_%s_%s.%s", sanitizeFilename(userID), result.GeneratedAt.UTC().Format("20060102_150405"), format),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

// BuildPlanDataset lays out prioritized assignments as rows and the summary as notes.
func BuildPlanDataset(result *models.PlanningResult) export.Dataset {
	suggested := make(map[string][]time.Time, len(result.Suggestions))
	for _, sug := range result.Suggestions {
		suggested[sug.AssignmentID] = sug.SuggestedTimes
	}

	rows := make([]map[string]string, 0, len(result.Assignments))
	for i, a := range result.Assignments {
		times := make([]string, 0, len(suggested[a.ID]))
		for _, ts := range suggested[a.ID] {
			times = append(times, ts.UTC().Format("2006-01-02 15:04"))
		}
		rows = append(rows, map[string]string{
			"Rank":            strconv.Itoa(i + 1),
			"Title":           a.Title,
			"Due":             a.DueDate.UTC().Format("2006-01-02 15:04"),
			"Priority":        strconv.Itoa(a.Priority),
			"Hours":           strconv.FormatFloat(a.EstimatedHours, 'f', 1, 64),
			"Status":          string(a.Status),
			"Score":           strconv.FormatFloat(PriorityScore(a, result.GeneratedAt), 'f', 1, 64),
			"Suggested Times": strings.Join(times, "; "),
		})
	}

	plan := result.StudyPlan
	notes := []string{
		fmt.Sprintf("Overdue: %d, urgent: %d, upcoming: %d, future: %d", plan.OverdueCount, plan.UrgentCount, plan.UpcomingCount, plan.FutureCount),
		fmt.Sprintf("Total hours needed: %.1f", plan.TotalHoursNeeded),
	}
	notes = append(notes, plan.Recommendations...)

	return export.Dataset{Headers: planExportHeaders, Rows: rows, Notes: notes}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
