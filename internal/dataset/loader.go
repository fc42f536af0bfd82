// Package dataset loads clinical/genomic dataset directories into an
// immutable schema plus data frame. A dataset directory holds a free-text
// overview, a column manifest (one attribute per line, optional tab-
// separated description), and a tab-delimited data table with a header row.
package dataset

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal"
	"github.com/UShah1996/AI-HOPE/internal/config"
)

const (
	// CanonicalTableFile is the expected data table filename.
	CanonicalTableFile = "data_table.tsv"
	// FallbackTableFile is the documented degraded-mode fallback.
	FallbackTableFile = "main_data.tsv"
	// ManifestFile lists declared attributes and descriptions.
	ManifestFile = "index.tsv"
)

var (
	timeNamePattern  = regexp.MustCompile(`(?i)(months|_time\b|^time|_days\b)`)
	eventNamePattern = regexp.MustCompile(`(?i)(status|event)`)
)

// Loader builds schemas and frames from dataset directories.
type Loader struct {
	log       *internal.Logger
	sampleCap int
}

// NewLoader creates a loader with the configured categorical sample cap
func NewLoader(log *internal.Logger, th config.Thresholds) *Loader {
	sampleCap := th.CategoricalSampleCap
	if sampleCap <= 0 {
		sampleCap = config.DefaultThresholds().CategoricalSampleCap
	}
	return &Loader{log: log, sampleCap: sampleCap}
}

// LoadSession reads the dataset directory once and returns the immutable
// schema plus the full data frame.
func (l *Loader) LoadSession(dir string) (*Session, error) {
	frame, err := l.loadFrame(dir)
	if err != nil {
		return nil, err
	}
	sch, err := l.buildSchema(dir, frame)
	if err != nil {
		return nil, err
	}
	return &Session{
		Name:   filepath.Base(filepath.Clean(dir)),
		Dir:    dir,
		Schema: sch,
		Frame:  frame,
	}, nil
}

// LoadSchema loads only the schema, without retaining the frame
func (l *Loader) LoadSchema(dir string) (*schema.DatasetSchema, error) {
	sess, err := l.LoadSession(dir)
	if err != nil {
		return nil, err
	}
	return sess.Schema, nil
}

func (l *Loader) resolveTablePath(dir string) (string, error) {
	canonical := filepath.Join(dir, CanonicalTableFile)
	if _, err := os.Stat(canonical); err == nil {
		return canonical, nil
	}
	fallback := filepath.Join(dir, FallbackTableFile)
	if _, err := os.Stat(fallback); err == nil {
		l.log.Warn("dataset %s: %s missing, using fallback %s", dir, CanonicalTableFile, FallbackTableFile)
		return fallback, nil
	}
	return "", &DatasetNotFoundError{Dir: dir, Tried: []string{CanonicalTableFile, FallbackTableFile}}
}

func (l *Loader) loadFrame(dir string) (*Frame, error) {
	path, err := l.resolveTablePath(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &SchemaParseError{Path: path, Detail: "cannot open table", Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	sep, err := sniffDelimiter(br)
	if err != nil {
		return nil, &SchemaParseError{Path: path, Detail: "cannot read table", Err: err}
	}

	r := csv.NewReader(br)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &SchemaParseError{Path: path, Detail: "malformed table", Err: err}
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &SchemaParseError{Path: path, Detail: "table has no header row"}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return NewFrame(header, records[1:]), nil
}

// sniffDelimiter peeks at the file start and picks tab unless commas
// clearly dominate, mirroring the tolerant loader this replaces.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	sample, err := br.Peek(1024)
	if err != nil && len(sample) == 0 {
		return 0, err
	}
	if strings.Count(string(sample), ",") > strings.Count(string(sample), "\t") {
		return ',', nil
	}
	return '\t', nil
}

// buildSchema derives variable descriptors from the table, enriched with
// manifest descriptions. Manifest entries absent from the table headers are
// dropped with a warning, not treated as fatal.
func (l *Loader) buildSchema(dir string, frame *Frame) (*schema.DatasetSchema, error) {
	descriptions, err := l.readManifest(dir, frame)
	if err != nil {
		return nil, err
	}

	variables := make(map[string]schema.VariableDescriptor, len(frame.Columns))
	for _, col := range frame.Columns {
		values, _ := frame.Column(col)
		desc := schema.VariableDescriptor{
			Name:        col,
			Kind:        inferKind(col, values),
			Description: descriptions[col],
		}
		if desc.Kind.IsCategoricalLike() {
			desc.Values = distinctSample(values, l.sampleCap)
		}
		variables[col] = desc
	}

	return &schema.DatasetSchema{
		Name:      filepath.Base(filepath.Clean(dir)),
		Columns:   frame.Columns,
		Variables: variables,
	}, nil
}

// readManifest parses index.tsv into column descriptions. A missing
// manifest degrades to an empty map with a warning; a present but
// unreadable or empty one is a SchemaParseError.
func (l *Loader) readManifest(dir string, frame *Frame) (map[string]string, error) {
	path := filepath.Join(dir, ManifestFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		l.log.Warn("dataset %s: no %s manifest, schema built from table headers only", dir, ManifestFile)
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, &SchemaParseError{Path: path, Detail: "cannot open manifest", Err: err}
	}
	defer f.Close()

	descriptions := make(map[string]string)
	seen := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, description, _ := strings.Cut(line, "\t")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		seen++
		if !frame.HasColumn(name) {
			l.log.Warn("dataset %s: manifest entry %q not in table headers, dropped", dir, name)
			continue
		}
		descriptions[name] = strings.TrimSpace(description)
	}
	if err := scanner.Err(); err != nil {
		return nil, &SchemaParseError{Path: path, Detail: "cannot read manifest", Err: err}
	}
	if seen == 0 {
		return nil, &SchemaParseError{Path: path, Detail: "manifest declares no attributes"}
	}
	return descriptions, nil
}

// inferKind classifies a column from its name convention and sampled values
func inferKind(name string, values []string) schema.Kind {
	numeric := len(values) > 0
	for _, v := range values {
		if _, ok := ParseNumeric(v); !ok {
			numeric = false
			break
		}
	}

	if timeNamePattern.MatchString(name) && numeric {
		return schema.KindSurvivalTime
	}
	if eventNamePattern.MatchString(name) && allBinaryTokens(values) {
		return schema.KindSurvivalEvent
	}
	if numeric {
		return schema.KindNumeric
	}
	return schema.KindCategorical
}

// allBinaryTokens reports whether every value is a recognized binary
// survival-status token: {0,1}, alive/dead style words, or cBioPortal
// "0:LIVING"/"1:DECEASED" prefixes.
func allBinaryTokens(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := ParseEventIndicator(v); !ok {
			return false
		}
	}
	return true
}

// ParseEventIndicator maps a survival-status token to its event flag:
// true for death/event, false for censored/alive.
func ParseEventIndicator(v string) (event bool, ok bool) {
	s := strings.ToLower(strings.TrimSpace(v))
	if i := strings.Index(s, ":"); i > 0 {
		s = s[:i]
	}
	switch s {
	case "1", "dead", "deceased", "event", "yes", "true":
		return true, true
	case "0", "alive", "living", "censored", "no", "false":
		return false, true
	}
	return false, false
}

func distinctSample(values []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Overview returns the dataset's free-text overview file contents when
// present, for presentation purposes only.
func Overview(dir string) string {
	for _, name := range []string{"README.txt", "overview.txt"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return ""
}
