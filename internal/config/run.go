package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/districting/distance"
)

// DefaultConfigPath is the checked-in defaults file. Its values match the
// Get* fallbacks below.
const DefaultConfigPath = "config/run.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Fallbacks used when a field is unset.
const (
	DefaultK         = 6
	DefaultFormula   = "geodesic"
	DefaultStrategy  = "demand-greedy"
	DefaultRankBy    = "sumAllToCenter"
	DefaultOutputDir = "."
)

// RunConfig holds the parameters of one districting run. Pointer fields are
// optional; command-line flags override whatever a file sets.
type RunConfig struct {
	K        *int    `json:"k,omitempty" yaml:"k,omitempty"`
	Seed     *int64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	Formula  *string `json:"formula,omitempty" yaml:"formula,omitempty"`
	Strategy *string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// Multi-start: extra randomized starts ranked by RankBy.
	Starts *int    `json:"starts,omitempty" yaml:"starts,omitempty"`
	RankBy *string `json:"rank_by,omitempty" yaml:"rank_by,omitempty"`

	// Objectives to report. Empty means all of them.
	Objectives []string `json:"objectives,omitempty" yaml:"objectives,omitempty"`

	Format    *string `json:"format,omitempty" yaml:"format,omitempty"`
	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Database  *string `json:"database,omitempty" yaml:"database,omitempty"`
}

func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }

// DefaultRunConfig returns a config with every scalar field populated.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		K:         ptrInt(DefaultK),
		Seed:      ptrInt64(districting.DefaultSeed),
		Formula:   ptrString(DefaultFormula),
		Strategy:  ptrString(DefaultStrategy),
		Starts:    ptrInt(0),
		RankBy:    ptrString(DefaultRankBy),
		OutputDir: ptrString(DefaultOutputDir),
	}
}

// LoadRunConfig reads a .json, .yaml or .yml file. Unset fields fall back to
// the Get* defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field.
func (c *RunConfig) Validate() error {
	if c.K != nil && *c.K < 1 {
		return fmt.Errorf("k must be at least 1, got %d", *c.K)
	}
	if c.Starts != nil && *c.Starts < 0 {
		return fmt.Errorf("starts must be non-negative, got %d", *c.Starts)
	}
	if c.Formula != nil {
		if _, err := distance.ParseFormula(*c.Formula); err != nil {
			return err
		}
	}
	if c.Strategy != nil {
		if _, err := districting.ParseStrategy(*c.Strategy); err != nil {
			return err
		}
	}
	if c.RankBy != nil {
		if _, err := districting.ParseObjective(*c.RankBy); err != nil {
			return fmt.Errorf("rank_by: %w", err)
		}
	}
	for _, name := range c.Objectives {
		if _, err := districting.ParseObjective(name); err != nil {
			return fmt.Errorf("objectives: %w", err)
		}
	}
	if c.Format != nil {
		switch strings.ToLower(*c.Format) {
		case "", "csv", "text", "txt":
		default:
			return fmt.Errorf("unknown instance format %q", *c.Format)
		}
	}
	return nil
}

// GetK returns the number of clusters.
func (c *RunConfig) GetK() int {
	if c.K == nil {
		return DefaultK
	}
	return *c.K
}

// GetSeed returns the random seed.
func (c *RunConfig) GetSeed() int64 {
	if c.Seed == nil {
		return districting.DefaultSeed
	}
	return *c.Seed
}

// GetFormula returns the parsed distance formula.
func (c *RunConfig) GetFormula() distance.Formula {
	name := DefaultFormula
	if c.Formula != nil {
		name = *c.Formula
	}
	f, err := distance.ParseFormula(name)
	if err != nil {
		return distance.Geodesic
	}
	return f
}

// GetStrategy returns the parsed construction strategy.
func (c *RunConfig) GetStrategy() districting.Strategy {
	if c.Strategy == nil {
		return districting.StrategyDemandGreedy
	}
	s, err := districting.ParseStrategy(*c.Strategy)
	if err != nil {
		return districting.StrategyDemandGreedy
	}
	return s
}

// GetStarts returns the number of extra randomized starts.
func (c *RunConfig) GetStarts() int {
	if c.Starts == nil {
		return 0
	}
	return *c.Starts
}

// GetRankBy returns the objective used to rank multi-start results.
func (c *RunConfig) GetRankBy() districting.Objective {
	if c.RankBy == nil {
		return districting.SumAllToCenter
	}
	o, err := districting.ParseObjective(*c.RankBy)
	if err != nil {
		return districting.SumAllToCenter
	}
	return o
}

// GetObjectives returns the objectives to report, all of them by default.
func (c *RunConfig) GetObjectives() []districting.Objective {
	if len(c.Objectives) == 0 {
		return districting.AllObjectives()
	}
	out := make([]districting.Objective, 0, len(c.Objectives))
	for _, name := range c.Objectives {
		if o, err := districting.ParseObjective(name); err == nil {
			out = append(out, o)
		}
	}
	return out
}

// GetFormat returns the instance format name, empty to infer from the path.
func (c *RunConfig) GetFormat() string {
	if c.Format == nil {
		return ""
	}
	return *c.Format
}

// GetOutputDir returns the directory for rendered files.
func (c *RunConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetDatabase returns the run store path, empty when persistence is off.
func (c *RunConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}
