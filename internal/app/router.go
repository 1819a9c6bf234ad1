package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/handler"
	"github.com/noah-isme/studyplanner-api/internal/middleware"
	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/pkg/config"
	"github.com/noah-isme/studyplanner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studyplanner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studyplanner-api/pkg/middleware/requestid"
	"github.com/noah-isme/studyplanner-api/pkg/textgen"
)

// RouterDeps carries what the HTTP layer needs.
type RouterDeps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Services  Services
	Generator textgen.Generator
	Checks    map[string]handler.Pinger
}

// RouterDeps derives the router dependencies from the container.
func (c *Container) RouterDeps() RouterDeps {
	checks := map[string]handler.Pinger{"database": c.DB}
	if c.Redis != nil {
		checks["redis"] = handler.PingerFunc(c.Repos.Cache.Ping)
	}
	return RouterDeps{Config: c.Config, Logger: c.Logger, Services: c.Services, Generator: c.Generator, Checks: checks}
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	svc := deps.Services

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.Metrics))

	metricsHandler := handler.NewMetricsHandler(svc.Metrics, deps.Checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	courseHandler := handler.NewCourseHandler(svc.Courses)
	assignmentHandler := handler.NewAssignmentHandler(svc.Assignments)
	calendarHandler := handler.NewCalendarHandler(svc.Calendar)
	planningHandler := handler.NewPlanningHandler(svc.Planning, svc.Export, svc.Notifications, deps.Generator, cfg.Planning.ReminderLookahead)
	chatHandler := handler.NewChatHandler(svc.Chat)

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	api := r.Group(prefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/users", userHandler.Create)
	api.GET("/agent/health", planningHandler.Health)
	api.GET("/chat/health", chatHandler.Health)

	protected := api.Group("")
	var self gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.JWT.Enabled {
		protected.Use(middleware.JWT(svc.Auth))
		self = middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf)
	} else {
		protected.Use(middleware.OptionalJWT(svc.Auth))
	}

	protected.GET("/users/:userId", self, userHandler.Get)
	protected.PUT("/users/:userId", self, userHandler.Update)

	protected.POST("/courses", courseHandler.Create)
	protected.GET("/courses/user/:userId", self, courseHandler.ListByUser)
	protected.GET("/courses/:id", courseHandler.Get)
	protected.PUT("/courses/:id", courseHandler.Update)
	protected.DELETE("/courses/:id", courseHandler.Delete)

	protected.POST("/assignments", assignmentHandler.Create)
	protected.GET("/assignments/user/:userId", self, assignmentHandler.ListByUser)
	protected.GET("/assignments/:id", assignmentHandler.Get)
	protected.PUT("/assignments/:id", assignmentHandler.Update)
	protected.DELETE("/assignments/:id", assignmentHandler.Delete)

	protected.POST("/calendar/events", calendarHandler.Create)
	protected.GET("/calendar/user/:userId", self, calendarHandler.List)
	protected.GET("/calendar/user/:userId/free-slots", self, calendarHandler.FreeSlots)
	protected.GET("/calendar/events/:id", calendarHandler.Get)
	protected.PUT("/calendar/events/:id", calendarHandler.Update)
	protected.DELETE("/calendar/events/:id", calendarHandler.Delete)

	protected.POST("/agent/plan/:userId", self, planningHandler.Run)
	protected.GET("/agent/plan/:userId/latest", self, planningHandler.Latest)
	protected.GET("/agent/plan/:userId/export", self, planningHandler.Export)
	protected.POST("/agent/deadlines/:userId", self, planningHandler.Deadlines)

	protected.POST("/chat", chatHandler.Chat)

	return r
}
