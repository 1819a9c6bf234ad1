package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/pkg/textgen"
)

const (
	defaultEnrichTimeout = 30 * time.Second
	maxEnrichedLines     = 5
)

// RecommendationEnricher may add free-text recommendations to a study plan.
// Implementations never fail: on any problem the plan is returned unchanged.
type RecommendationEnricher interface {
	Enrich(ctx context.Context, plan models.StudyPlan) models.StudyPlan
}

// NoopEnricher returns the plan as is.
type NoopEnricher struct{}

// Enrich implements RecommendationEnricher.
func (NoopEnricher) Enrich(_ context.Context, plan models.StudyPlan) models.StudyPlan {
	return plan
}

// TextGenEnricher asks a text-generation backend for extra recommendations.
type TextGenEnricher struct {
	generator textgen.Generator
	timeout   time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewRecommendationEnricher picks the live enricher when the generator is available, the no-op otherwise.
func NewRecommendationEnricher(generator textgen.Generator, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) RecommendationEnricher {
	if generator == nil || !generator.Available() {
		return NoopEnricher{}
	}
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextGenEnricher{generator: generator, timeout: timeout, metrics: metrics, logger: logger}
}

// Enrich implements RecommendationEnricher.
func (e *TextGenEnricher) Enrich(ctx context.Context, plan models.StudyPlan) models.StudyPlan {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.generator.Generate(ctx, recommendationPrompt(plan))
	if err != nil {
		e.logger.Warn("recommendation enrichment failed, using deterministic list", zap.String("model", e.generator.Model()), zap.Error(err))
		e.metrics.RecordEnrichmentFallback()
		return plan
	}
	extra := parseRecommendationLines(text, maxEnrichedLines)
	if len(extra) == 0 {
		e.logger.Warn("recommendation enrichment returned nothing usable", zap.String("model", e.generator.Model()))
		e.metrics.RecordEnrichmentFallback()
		return plan
	}

	enriched := plan
	enriched.Recommendations = make([]string, 0, len(plan.Recommendations)+len(extra))
	enriched.Recommendations = append(enriched.Recommendations, plan.Recommendations...)
	enriched.Recommendations = append(enriched.Recommendations, extra...)
	return enriched
}

func recommendationPrompt(plan models.StudyPlan) string {
	return fmt.Sprintf(`You are a helpful study planning assistant. Based on this context, provide 3-5 concise recommendations:

User has %d overdue assignments, %d urgent assignments, %d upcoming assignments.
Total hours needed: %.1f

Recommendations:`, plan.OverdueCount, plan.UrgentCount, plan.UpcomingCount, plan.TotalHoursNeeded)
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// parseRecommendationLines keeps non-empty lines, dropping echoed headings and list markers.
func parseRecommendationLines(text string, limit int) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "Recommendations:") {
			continue
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}
	return lines
}
