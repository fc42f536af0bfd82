package ui

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/UShah1996/AI-HOPE/adapters/excel"
	"github.com/UShah1996/AI-HOPE/domain/plan"
)

// analyzeRequest is the body of POST /api/analyze: a dataset name and the
// untrusted candidate plan from the external generator.
type analyzeRequest struct {
	Dataset string    `json:"dataset" binding:"required"`
	Plan    plan.Plan `json:"plan"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSchema(c *gin.Context) {
	name := c.Query("dataset")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": "dataset query parameter required"}})
		return
	}
	sch, err := s.service.Schema(s.datasetDir(name))
	if err != nil {
		s.errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, sch)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	res, corrections, err := s.service.Analyze(s.datasetDir(req.Dataset), req.Plan)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	body := gin.H{
		"result":      res,
		"report_html": RenderHTML(res),
	}
	if len(corrections) > 0 {
		body["corrections"] = corrections
	}
	c.JSON(http.StatusOK, body)
}

// handleAnalyzeExport runs the analysis and streams an xlsx workbook
func (s *Server) handleAnalyzeExport(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	res, _, err := s.service.Analyze(s.datasetDir(req.Dataset), req.Plan)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	buf, err := excel.WriteResult(res)
	if err != nil {
		s.errorResponse(c, err)
		return
	}

	filename := "analysis_" + res.ID.String() + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// datasetDir maps a dataset name onto its directory under the data root.
// Path separators are stripped so callers cannot walk outside it.
func (s *Server) datasetDir(name string) string {
	clean := filepath.Base(strings.TrimSpace(name))
	return filepath.Join(s.cfg.Data.Dir, clean)
}
