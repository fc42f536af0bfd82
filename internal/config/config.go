package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Data       DataConfig
	Thresholds Thresholds
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds dataset location settings
type DataConfig struct {
	// Dir is the root directory containing one subdirectory per dataset.
	Dir string
}

// Thresholds holds the named statistical and correction constants. They are
// configuration, not magic numbers, so tests can pin them and deployments
// can tune them.
type Thresholds struct {
	// MinExpectedCellCount selects Fisher's exact test over chi-square
	// when any expected contingency cell falls below it.
	MinExpectedCellCount float64
	// ContinuityCorrection is added to every 2x2 cell when any cell is
	// zero (Haldane-Anscombe) before computing an odds ratio.
	ContinuityCorrection float64
	// MinCohortSize is the smallest cohort the engine will analyze.
	MinCohortSize int
	// MatchThreshold is the minimum similarity for an auto-correction.
	MatchThreshold float64
	// AmbiguityMargin is the lead the best match must hold over the
	// runner-up for a correction to be unambiguous.
	AmbiguityMargin float64
	// CategoricalSampleCap bounds the distinct-value sample cached per
	// categorical column in the schema.
	CategoricalSampleCap int
	// ConfidenceLevel is used for hazard ratio intervals.
	ConfidenceLevel float64
}

// DefaultThresholds returns the documented fixed constants
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinExpectedCellCount: 5.0,
		ContinuityCorrection: 0.5,
		MinCohortSize:        5,
		MatchThreshold:       0.72,
		AmbiguityMargin:      0.08,
		CategoricalSampleCap: 20,
		ConfidenceLevel:      0.95,
	}
}

// Load builds configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("AIHOPE_PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Data: DataConfig{
			Dir: getEnv("AIHOPE_DATA_DIR", "data"),
		},
		Thresholds: DefaultThresholds(),
	}

	if v := os.Getenv("AIHOPE_MIN_COHORT_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid AIHOPE_MIN_COHORT_SIZE %q", v)
		}
		cfg.Thresholds.MinCohortSize = n
	}
	if v := os.Getenv("AIHOPE_MATCH_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, fmt.Errorf("invalid AIHOPE_MATCH_THRESHOLD %q", v)
		}
		cfg.Thresholds.MatchThreshold = f
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
