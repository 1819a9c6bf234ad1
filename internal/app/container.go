// Package app wires configuration, storage and services into the processes in cmd/.
package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/repository"
	"github.com/noah-isme/studyplanner-api/internal/scheduler"
	"github.com/noah-isme/studyplanner-api/internal/service"
	"github.com/noah-isme/studyplanner-api/pkg/cache"
	"github.com/noah-isme/studyplanner-api/pkg/config"
	"github.com/noah-isme/studyplanner-api/pkg/database"
	"github.com/noah-isme/studyplanner-api/pkg/notify"
	"github.com/noah-isme/studyplanner-api/pkg/textgen"
)

const planIssuer = "studyplanner-api"

// Repositories groups the Postgres backed stores.
type Repositories struct {
	Users       *repository.UserRepository
	Courses     *repository.CourseRepository
	Assignments *repository.AssignmentRepository
	Calendar    *repository.CalendarRepository
	Cache       *repository.CacheRepository
}

// Services groups the domain services shared by the API and the worker.
type Services struct {
	Metrics       *service.MetricsService
	Cache         *service.CacheService
	Auth          *service.AuthService
	Users         *service.UserService
	Courses       *service.CourseService
	Assignments   *service.AssignmentService
	Calendar      *service.CalendarService
	Notifications *service.NotificationService
	Planning      *service.PlanningService
	Export        *service.ExportService
	Chat          *service.ChatService
}

// Container owns the process-wide resources. Close releases them.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Generator textgen.Generator
	Repos     Repositories
	Services  Services
	Scheduler *scheduler.Runner
}

// Build opens the database and the optional Redis client, then wires every service.
// Redis being unreachable only disables caching.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	c := &Container{Config: cfg, Logger: logger, DB: db, Redis: redisClient}
	c.Repos = Repositories{
		Users:       repository.NewUserRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Calendar:    repository.NewCalendarRepository(db),
		Cache:       repository.NewCacheRepository(redisClient, logger),
	}
	c.Generator = textgen.New(cfg.TextGen, logger.Named("textgen"))
	c.Services = NewServices(cfg, c.Repos, c.Generator, newSender(cfg.Notifications, logger), redisClient != nil, logger)
	c.Scheduler = scheduler.NewRunner(
		c.Repos.Users,
		c.Services.Planning,
		c.Services.Notifications,
		cfg.Planning.ReminderLookahead,
		cfg.Scheduler,
		logger.Named("scheduler"),
	)
	return c, nil
}

// NewServices wires the services over the given repositories.
func NewServices(cfg *config.Config, repos Repositories, generator textgen.Generator, sender notify.Sender, cacheEnabled bool, logger *zap.Logger) Services {
	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repos.Cache, metrics, cfg.Planning.CacheTTL, logger, cacheEnabled)
	notifications := service.NewNotificationService(repos.Assignments, repos.Users, sender, metrics, logger.Named("notifications"))

	planning := service.NewPlanningService(service.PlanningServiceParams{
		Assignments: repos.Assignments,
		Courses:     repos.Courses,
		Calendar:    repos.Calendar,
		Users:       repos.Users,
		Reminders:   notifications,
		Enricher:    service.NewRecommendationEnricher(generator, cfg.TextGen.Timeout, metrics, logger.Named("enricher")),
		Cache:       cacheSvc,
		Metrics:     metrics,
		Logger:      logger.Named("planning"),
		Options: service.PlanningOptions{
			Horizon:           cfg.Planning.Horizon,
			ReminderLookahead: cfg.Planning.ReminderLookahead,
			CacheTTL:          cfg.Planning.CacheTTL,
			DefaultHours:      cfg.Planning.DefaultHours,
		},
	})

	return Services{
		Metrics: metrics,
		Cache:   cacheSvc,
		Auth: service.NewAuthService(repos.Users, validate, logger, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            planIssuer,
		}),
		Users:         service.NewUserService(repos.Users, validate, logger),
		Courses:       service.NewCourseService(repos.Courses, validate, logger),
		Assignments:   service.NewAssignmentService(repos.Assignments, cacheSvc, validate, logger),
		Calendar:      service.NewCalendarService(repos.Calendar, validate, logger),
		Notifications: notifications,
		Planning:      planning,
		Export:        service.NewExportService(planning, nil, nil, logger),
		Chat:          service.NewChatService(generator, logger.Named("chat")),
	}
}

// Close releases the database and Redis connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
}

func newSender(cfg config.NotificationConfig, logger *zap.Logger) notify.Sender {
	if !cfg.Enabled {
		return notify.Disabled{}
	}
	if cfg.Channel == "sendgrid" {
		if cfg.SendGridAPIKey != "" {
			return notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.AppName, cfg.FromEmail)
		}
		logger.Warn("sendgrid channel selected without SENDGRID_API_KEY, falling back to console")
	}
	return notify.NewConsoleSender(logger.Named("notify"))
}
