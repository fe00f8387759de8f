package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"tasktracker/internal/models"
	"tasktracker/internal/service"
	"tasktracker/internal/storage"
	"tasktracker/pkg/apierrors"
)

// Server provides HTTP handlers for the task tracker API.
type Server struct {
	engine     *gin.Engine
	repo       storage.Repository
	tasks      *service.TaskService
	categories *service.CategoryService
	messages   *apierrors.Translator
	metrics    *metrics
	logger     *slog.Logger
	staticDir  string
}

// New constructs the HTTP server with routes and middleware configured.
// A nil bundle leaves error messages as their message ids.
func New(repo storage.Repository, bundle *i18n.Bundle, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	srv := &Server{
		engine:     router,
		repo:       repo,
		tasks:      service.NewTaskService(repo),
		categories: service.NewCategoryService(repo),
		messages:   apierrors.NewTranslator(bundle, logger),
		metrics:    newMetrics(),
		logger:     logger,
		staticDir:  staticDir,
	}

	router.Use(gin.Recovery())
	router.Use(requestID(), language())
	router.Use(srv.metrics.middleware())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", s.metrics.handler())

	api := s.engine.Group("/api", requestLogger(s.logger))
	{
		api.GET("/health", s.handleHealth)
		api.GET("/healthz", s.handleHealth)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.PATCH(":id/complete", s.handleToggleTask)
			tasks.DELETE(":id", s.handleDeleteTask)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", s.handleListCategories)
			categories.POST("", s.handleCreateCategory)
			categories.GET(":id", s.handleGetCategory)
			categories.PUT(":id", s.handleUpdateCategory)
			categories.DELETE(":id", s.handleDeleteCategory)
		}
	}

	s.mountStatic()
}

// handleHealth reports readiness of the storage backend.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.repo.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		s.fail(c, http.StatusServiceUnavailable, apierrors.MsgStorageUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// parseID converts a positive path parameter to int64. On failure it writes
// the response with msgKey.
func (s *Server) parseID(c *gin.Context, name, msgKey string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, http.StatusBadRequest, msgKey)
		return 0, false
	}
	return id, true
}

// fail writes a translated error envelope.
func (s *Server) fail(c *gin.Context, status int, msgKey string, fields ...models.FieldError) {
	c.AbortWithStatusJSON(status, s.messages.CreateError(status, msgKey, langOf(c), fields...))
}

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported as 500.
func (s *Server) respondError(c *gin.Context, err error) {
	if verr, ok := models.AsValidation(err); ok {
		s.fail(c, http.StatusBadRequest, apierrors.MsgValidationFailed, verr.Fields...)
		return
	}

	switch {
	case errors.Is(err, models.ErrTaskNotFound):
		s.fail(c, http.StatusNotFound, apierrors.MsgTaskNotFound)
	case errors.Is(err, models.ErrCategoryNotFound):
		s.fail(c, http.StatusNotFound, apierrors.MsgCategoryNotFound)
	case errors.Is(err, models.ErrCategoryNameTaken):
		s.fail(c, http.StatusConflict, apierrors.MsgCategoryNameTaken,
			models.FieldError{Field: "name", Message: models.ErrCategoryNameTaken.Error()})
	default:
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString(ctxRequestID)),
			slog.String("error", err.Error()))
		_ = c.Error(err)
		s.fail(c, http.StatusInternalServerError, apierrors.MsgStorageFailure)
	}
}

// respondSuccess writes payload as JSON, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
