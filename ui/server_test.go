package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UShah1996/AI-HOPE/app"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
)

// newTestServer stands up a server over a data root holding one
// colorectal-style dataset named TCGA_COAD.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "TCGA_COAD")
	require.NoError(t, os.Mkdir(dir, 0o755))

	stages := []string{"Stage I", "Stage II", "Stage III", "Stage IV"}
	var b strings.Builder
	b.WriteString("SampleID\tTUMOR_STAGE\tKRAS_mutation_status\tTP53_Mutation\tOS_MONTHS\tOS_STATUS\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "S%03d\t%s\t%d\t%d\t%.1f\t%d\n",
			i, stages[i%4], i%2, (i/2)%2, 6.0+float64(i)*2.5, i%3%2)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_table.tsv"), []byte(b.String()), 0o644))

	cfg := &config.Config{
		Server:     config.ServerConfig{Port: "0", GinMode: "test"},
		Data:       config.DataConfig{Dir: root},
		Thresholds: config.DefaultThresholds(),
	}
	log := internal.NewDefaultLogger()
	return NewServer(app.NewAnalysisService(cfg, log), cfg, log)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSchemaEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/schema?dataset=TCGA_COAD", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TCGA_COAD", body.Name)
	assert.Len(t, body.Columns, 6)
}

func TestSchemaEndpoint_MissingParam(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/schema", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchemaEndpoint_UnknownDataset(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/schema?dataset=NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "DATASET_NOT_FOUND")
}

func TestSchemaEndpoint_PathTraversalBlocked(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/schema?dataset=..%2F..%2Fetc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeEndpoint_Survival(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/analyze",
		`{"dataset":"TCGA_COAD","plan":{"mode":"survival","group_by":"KRAS_Status"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Result struct {
			Mode     string `json:"mode"`
			Survival *struct {
				GroupBy string `json:"group_by"`
			} `json:"survival"`
		} `json:"result"`
		Corrections []struct {
			Field string `json:"field"`
			To    string `json:"to"`
		} `json:"corrections"`
		ReportHTML string `json:"report_html"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "survival", body.Result.Mode)
	require.NotNil(t, body.Result.Survival)
	assert.Equal(t, "KRAS_mutation_status", body.Result.Survival.GroupBy)
	require.Len(t, body.Corrections, 1)
	assert.Equal(t, "KRAS_mutation_status", body.Corrections[0].To)
	assert.Contains(t, body.ReportHTML, "Kaplan-Meier")
}

func TestAnalyzeEndpoint_RejectionCarriesCandidates(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/analyze",
		`{"dataset":"TCGA_COAD","plan":{"mode":"survival","group_by":"FAKE_COLUMN"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error struct {
			Code       string   `json:"code"`
			Field      string   `json:"field"`
			Value      string   `json:"value"`
			Candidates []string `json:"candidates"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PLAN_REJECTED", body.Error.Code)
	assert.Equal(t, "group_by", body.Error.Field)
	assert.Equal(t, "FAKE_COLUMN", body.Error.Value)
	assert.Equal(t,
		[]string{"SampleID", "TUMOR_STAGE", "KRAS_mutation_status", "TP53_Mutation", "OS_MONTHS", "OS_STATUS"},
		body.Error.Candidates)
}

func TestAnalyzeEndpoint_UnknownValueCarriesObserved(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/analyze",
		`{"dataset":"TCGA_COAD","plan":{"mode":"case_control","target":"TP53_Mutation",`+
			`"case_condition":"TUMOR_STAGE == \"Stage Nine\"","control_condition":"TUMOR_STAGE == \"Stage I\""}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error struct {
			Code     string   `json:"code"`
			Variable string   `json:"variable"`
			Observed []string `json:"observed_values"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PLAN_REJECTED", body.Error.Code)
	assert.Equal(t, "TUMOR_STAGE", body.Error.Variable)
	assert.Contains(t, body.Error.Observed, "Stage IV")
}

func TestAnalyzeEndpoint_BadBody(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/analyze", `{"plan":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeExportEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/analyze/export",
		`{"dataset":"TCGA_COAD","plan":{"mode":"association_scan","target":"TUMOR_STAGE"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx is a zip container
	assert.Equal(t, "PK", w.Body.String()[:2])
}
