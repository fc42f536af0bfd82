// Package ui exposes the analysis pipeline over a JSON HTTP API for the
// conversational front-end. The front-end itself is an external
// collaborator; this surface only accepts candidate plans and returns
// results or typed rejections.
package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/UShah1996/AI-HOPE/app"
	"github.com/UShah1996/AI-HOPE/domain/core"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	apperrors "github.com/UShah1996/AI-HOPE/internal/errors"
	"github.com/UShah1996/AI-HOPE/internal/safety"
)

// Server is the HTTP surface over the analysis service.
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	cfg     *config.Config
	log     *internal.Logger
}

// NewServer wires routes and middleware
func NewServer(service *app.AnalysisService, cfg *config.Config, log *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	s := &Server{router: router, service: service, cfg: cfg, log: log}

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/schema", s.handleSchema)
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/analyze/export", s.handleAnalyzeExport)
	}
	return s
}

// Run starts the HTTP server on the configured port
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	s.log.Info("AI-HOPE analysis API listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// errorResponse maps the typed error taxonomy onto coded HTTP rejections.
// Every rejection is distinguishable from a successful empty result.
func (s *Server) errorResponse(c *gin.Context, err error) {
	code := apperrors.CodeInternalError
	status := http.StatusInternalServerError

	switch {
	case core.IsDataError(err):
		code = apperrors.CodeDatasetNotFound
		status = http.StatusNotFound
	case core.IsPlanRejected(err):
		code = apperrors.CodePlanRejected
		status = http.StatusUnprocessableEntity
	case core.IsExecutionError(err):
		code = apperrors.CodeExecutionFailed
		status = http.StatusUnprocessableEntity
	}

	body := gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	}

	// Column rejections carry the full candidate list so the front-end can
	// render "available columns" without re-deriving them.
	var unknownCol *safety.UnknownColumnError
	if errors.As(err, &unknownCol) {
		body["error"].(gin.H)["field"] = unknownCol.Field
		body["error"].(gin.H)["value"] = unknownCol.Value
		body["error"].(gin.H)["candidates"] = unknownCol.Candidates
	}
	var unknownVal *safety.UnknownValueError
	if errors.As(err, &unknownVal) {
		body["error"].(gin.H)["variable"] = unknownVal.Variable
		body["error"].(gin.H)["value"] = unknownVal.Value
		body["error"].(gin.H)["observed_values"] = unknownVal.Observed
	}

	c.JSON(status, body)
}
