// Package app wires the analysis pipeline: dataset session lookup, one
// bounded auto-correction pass, plan validation, then statistical
// execution. The pipeline is linear and synchronous; a rejected plan never
// reaches the engine.
package app

import (
	"github.com/UShah1996/AI-HOPE/domain/plan"
	"github.com/UShah1996/AI-HOPE/domain/result"
	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
	"github.com/UShah1996/AI-HOPE/internal/dataset"
	"github.com/UShah1996/AI-HOPE/internal/engine"
	"github.com/UShah1996/AI-HOPE/internal/resolver"
	"github.com/UShah1996/AI-HOPE/internal/safety"
)

// AnalysisService runs candidate plans end to end against datasets.
type AnalysisService struct {
	sessions *dataset.SessionCache
	resolver *resolver.Resolver
	engine   *engine.Engine
	log      *internal.Logger
}

// NewAnalysisService builds the full pipeline from configuration
func NewAnalysisService(cfg *config.Config, log *internal.Logger) *AnalysisService {
	loader := dataset.NewLoader(log, cfg.Thresholds)
	return &AnalysisService{
		sessions: dataset.NewSessionCache(loader, log),
		resolver: resolver.New(cfg.Thresholds),
		engine:   engine.New(log, cfg.Thresholds),
		log:      log,
	}
}

// Schema returns the load-once schema for a dataset directory
func (s *AnalysisService) Schema(dir string) (*schema.DatasetSchema, error) {
	sess, err := s.sessions.Get(dir)
	if err != nil {
		return nil, err
	}
	return sess.Schema, nil
}

// Analyze resolves, validates, and executes one candidate plan. The
// corrections applied by the resolver are returned alongside the result
// for auditability; on rejection the typed validation error is returned
// and execution is never invoked.
func (s *AnalysisService) Analyze(dir string, candidate plan.Plan) (*result.AnalysisResult, []resolver.Correction, error) {
	sess, err := s.sessions.Get(dir)
	if err != nil {
		return nil, nil, err
	}

	fixed, corrections := s.resolver.AttemptFix(candidate, sess.Schema)
	for _, c := range corrections {
		s.log.Info("auto-correction: %s %q -> %q (score %.2f)", c.Field, c.From, c.To, c.Score)
	}

	vp, err := safety.Validate(fixed, sess.Schema)
	if err != nil {
		s.log.Info("plan rejected for %s: %v", sess.Name, err)
		return nil, corrections, err
	}

	res, err := s.engine.Execute(vp, sess)
	if err != nil {
		s.log.Info("execution failed for %s: %v", sess.Name, err)
		return nil, corrections, err
	}
	return res, corrections, nil
}

// InvalidateDataset drops the cached session, forcing a reload on next use
func (s *AnalysisService) InvalidateDataset(dir string) {
	s.sessions.Invalidate(dir)
}
