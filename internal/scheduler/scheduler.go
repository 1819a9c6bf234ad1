// Package scheduler triggers deadline checks and planning runs for every user.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/pkg/config"
	"github.com/noah-isme/studyplanner-api/pkg/jobs"
)

const (
	JobDeadlines = "deadlines"
	JobPlanning  = "planning"

	defaultJobTimeout = 5 * time.Minute
)

type userLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type planRunner interface {
	RunPlanning(ctx context.Context, userID string) (*models.PlanningResult, error)
}

type deadlineChecker interface {
	CheckUpcomingDeadlines(ctx context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error)
}

// Summary reports one fan-out pass.
type Summary struct {
	Job       string
	Users     int
	Succeeded int
	Failed    int
	Reminders int
	Duration  time.Duration
}

// Runner fans jobs out over all users on a bounded worker pool.
type Runner struct {
	users     userLister
	planner   planRunner
	deadlines deadlineChecker
	lookahead time.Duration
	cfg       config.SchedulerConfig
	logger    *zap.Logger
}

// NewRunner wires the scheduler.
func NewRunner(users userLister, planner planRunner, deadlines deadlineChecker, lookahead time.Duration, cfg config.SchedulerConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{users: users, planner: planner, deadlines: deadlines, lookahead: lookahead, cfg: cfg, logger: logger}
}

// RunDeadlines checks upcoming deadlines for every user.
func (r *Runner) RunDeadlines(ctx context.Context) (Summary, error) {
	var mu sync.Mutex
	reminders := 0
	summary, err := r.fanOut(ctx, JobDeadlines, func(ctx context.Context, userID string) error {
		sent, err := r.deadlines.CheckUpcomingDeadlines(ctx, userID, r.lookahead)
		if err != nil {
			return err
		}
		mu.Lock()
		reminders += len(sent)
		mu.Unlock()
		return nil
	})
	summary.Reminders = reminders
	return summary, err
}

// RunPlanning runs the planning flow for every user.
func (r *Runner) RunPlanning(ctx context.Context) (Summary, error) {
	return r.fanOut(ctx, JobPlanning, func(ctx context.Context, userID string) error {
		_, err := r.planner.RunPlanning(ctx, userID)
		return err
	})
}

func (r *Runner) fanOut(ctx context.Context, jobType string, work func(context.Context, string) error) (Summary, error) {
	start := time.Now()
	summary := Summary{Job: jobType}

	userIDs, err := r.users.ListIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list users: %w", err)
	}
	summary.Users = len(userIDs)
	if len(userIDs) == 0 {
		return summary, nil
	}

	var mu sync.Mutex
	queue := jobs.NewQueue(jobType, func(ctx context.Context, job jobs.Job) error {
		return work(ctx, job.UserID)
	}, jobs.QueueConfig{
		Workers:    r.cfg.Workers,
		MaxRetries: r.cfg.Retries,
		RetryDelay: r.cfg.RetryDelay,
		JobTimeout: defaultJobTimeout,
		Logger:     r.logger,
		OnResult: func(job jobs.Job, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				return
			}
			summary.Succeeded++
		},
	})
	queue.Start(ctx)
	defer queue.Stop()

	for _, id := range userIDs {
		if err := queue.Enqueue(jobs.Job{ID: jobType + ":" + id, Type: jobType, UserID: id}); err != nil {
			return summary, err
		}
	}
	if err := queue.Wait(ctx); err != nil {
		return summary, err
	}

	mu.Lock()
	defer mu.Unlock()
	summary.Duration = time.Since(start)
	r.logger.Info("scheduled pass finished",
		zap.String("job", jobType),
		zap.Int("users", summary.Users),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// Cron registers both passes on their cron specs. The caller starts and stops the returned scheduler.
func (r *Runner) Cron(ctx context.Context) (*cron.Cron, error) {
	log := cronLogger{r.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(r.cfg.DeadlineSpec, func() { r.logPass(r.RunDeadlines(ctx)) }); err != nil {
		return nil, fmt.Errorf("deadline schedule %q: %w", r.cfg.DeadlineSpec, err)
	}
	if _, err := c.AddFunc(r.cfg.PlanningSpec, func() { r.logPass(r.RunPlanning(ctx)) }); err != nil {
		return nil, fmt.Errorf("planning schedule %q: %w", r.cfg.PlanningSpec, err)
	}
	return c, nil
}

func (r *Runner) logPass(summary Summary, err error) {
	if err != nil {
		r.logger.Error("scheduled pass failed", zap.String("job", summary.Job), zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
