package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/app"
	"github.com/noah-isme/studyplanner-api/pkg/config"
	"github.com/noah-isme/studyplanner-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:          "planner-worker",
	Short:        "Background jobs for the study planner",
	Long:         "Runs deadline reminder checks and planning passes for all users, either once or on a cron schedule.",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(deadlinesCmd(), planningCmd(), planCmd(), scheduleCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withContainer loads configuration and runs fn over a fully wired container.
func withContainer(ctx context.Context, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg, "worker")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	container, err := app.Build(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(ctx, container)
}

func deadlinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deadlines",
		Short: "Send reminders for assignments due within the lookahead window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				summary, err := c.Scheduler.RunDeadlines(ctx)
				if err != nil {
					return err
				}
				renderSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func planningCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "planning",
		Short: "Run the planning flow for every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				summary, err := c.Scheduler.RunPlanning(ctx)
				if err != nil {
					return err
				}
				renderSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <user-id>",
		Short: "Run the planning flow for one user and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				result, err := c.Services.Planning.RunPlanning(ctx, args[0])
				if err != nil {
					return err
				}
				renderPlan(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run deadline checks and planning passes on their cron schedules until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				scheduler, err := c.Scheduler.Cron(ctx)
				if err != nil {
					return err
				}
				scheduler.Start()
				c.Logger.Info("scheduler started",
					zap.String("deadlines", c.Config.Scheduler.DeadlineSpec),
					zap.String("planning", c.Config.Scheduler.PlanningSpec),
				)

				<-ctx.Done()
				c.Logger.Info("stopping scheduler")
				<-scheduler.Stop().Done()
				return nil
			})
		},
	}
}
