package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/pkg/config"
)

type staticUsers struct {
	ids []string
	err error
}

func (s staticUsers) ListIDs(context.Context) ([]string, error) { return s.ids, s.err }

type recordingPlanner struct {
	mu    sync.Mutex
	users []string
	fail  map[string]bool
}

func (p *recordingPlanner) RunPlanning(_ context.Context, userID string) (*models.PlanningResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	if p.fail[userID] {
		return nil, errors.New("store unavailable")
	}
	return &models.PlanningResult{UserID: userID}, nil
}

type countingDeadlines struct {
	lookahead time.Duration
	mu        sync.Mutex
}

func (d *countingDeadlines) CheckUpcomingDeadlines(_ context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error) {
	d.mu.Lock()
	d.lookahead = lookahead
	d.mu.Unlock()
	return []models.ReminderRecord{{AssignmentID: userID + "-a"}}, nil
}

func schedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		DeadlineSpec: "0 * * * *",
		PlanningSpec: "0 8 * * *",
		Workers:      2,
		Retries:      1,
		RetryDelay:   time.Millisecond,
	}
}

func TestRunPlanningFansOutOverUsers(t *testing.T) {
	planner := &recordingPlanner{fail: map[string]bool{"u2": true}}
	runner := NewRunner(staticUsers{ids: []string{"u1", "u2", "u3"}}, planner, &countingDeadlines{}, time.Hour, schedulerConfig(), nil)

	summary, err := runner.RunPlanning(context.Background())
	require.NoError(t, err)

	assert.Equal(t, JobPlanning, summary.Job)
	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	// u2 is attempted once more before it counts as failed
	assert.Len(t, planner.users, 4)
}

func TestRunDeadlinesCountsReminders(t *testing.T) {
	deadlines := &countingDeadlines{}
	runner := NewRunner(staticUsers{ids: []string{"u1", "u2"}}, &recordingPlanner{}, deadlines, 6*time.Hour, schedulerConfig(), nil)

	summary, err := runner.RunDeadlines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Reminders)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 6*time.Hour, deadlines.lookahead)
}

func TestFanOutUserListFailure(t *testing.T) {
	runner := NewRunner(staticUsers{err: errors.New("db down")}, &recordingPlanner{}, &countingDeadlines{}, time.Hour, schedulerConfig(), nil)
	_, err := runner.RunPlanning(context.Background())
	assert.ErrorContains(t, err, "db down")

	runner = NewRunner(staticUsers{}, &recordingPlanner{}, &countingDeadlines{}, time.Hour, schedulerConfig(), nil)
	summary, err := runner.RunPlanning(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Users)
}

func TestCronValidatesSpecs(t *testing.T) {
	runner := NewRunner(staticUsers{}, &recordingPlanner{}, &countingDeadlines{}, time.Hour, schedulerConfig(), nil)
	c, err := runner.Cron(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)

	cfg := schedulerConfig()
	cfg.PlanningSpec = "every day"
	_, err = NewRunner(staticUsers{}, &recordingPlanner{}, &countingDeadlines{}, time.Hour, cfg, nil).Cron(context.Background())
	assert.Error(t, err)
}
