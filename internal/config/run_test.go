package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/districting/distance"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyConfigFallsBackToDefaults(t *testing.T) {
	cfg := &RunConfig{}
	assert.Equal(t, 6, cfg.GetK())
	assert.Equal(t, int64(22), cfg.GetSeed())
	assert.Equal(t, distance.Geodesic, cfg.GetFormula())
	assert.Equal(t, districting.StrategyDemandGreedy, cfg.GetStrategy())
	assert.Equal(t, 0, cfg.GetStarts())
	assert.Equal(t, districting.SumAllToCenter, cfg.GetRankBy())
	assert.Equal(t, districting.AllObjectives(), cfg.GetObjectives())
	assert.Equal(t, "", cfg.GetFormat())
	assert.Equal(t, ".", cfg.GetOutputDir())
	assert.Equal(t, "", cfg.GetDatabase())
}

func TestDefaultRunConfigMatchesDefaultsFile(t *testing.T) {
	fromFile, err := LoadRunConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	def := DefaultRunConfig()
	require.NoError(t, def.Validate())
	assert.Equal(t, def.GetK(), fromFile.GetK())
	assert.Equal(t, def.GetSeed(), fromFile.GetSeed())
	assert.Equal(t, def.GetFormula(), fromFile.GetFormula())
	assert.Equal(t, def.GetStrategy(), fromFile.GetStrategy())
	assert.Equal(t, def.GetStarts(), fromFile.GetStarts())
	assert.Equal(t, def.GetRankBy(), fromFile.GetRankBy())
	assert.Equal(t, def.GetObjectives(), fromFile.GetObjectives())
}

func TestLoadRunConfig_YAMLExample(t *testing.T) {
	cfg, err := LoadRunConfig(filepath.Join("..", "..", "config", "run.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.GetK())
	assert.Equal(t, distance.GreatCircle, cfg.GetFormula())
	assert.Equal(t, 50, cfg.GetStarts())
	assert.Equal(t, districting.LoadRange, cfg.GetRankBy())
	assert.Equal(t, []districting.Objective{districting.SumAllToCenter, districting.LoadRange}, cfg.GetObjectives())
	assert.Equal(t, "out", cfg.GetOutputDir())
	assert.Equal(t, "out/runs.db", cfg.GetDatabase())
}

func TestLoadRunConfig_PartialJSON(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"k": 3, "strategy": "random-round-robin"}`)
	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.GetK())
	assert.Equal(t, districting.StrategyRandomRoundRobin, cfg.GetStrategy())
	assert.Equal(t, int64(22), cfg.GetSeed())
	assert.Nil(t, cfg.Formula)
}

func TestLoadRunConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"bad extension", "c.toml", "k = 1", "extension"},
		{"bad json", "c.json", "{", "failed to parse"},
		{"bad yaml", "c.yaml", "k: [", "failed to parse"},
		{"zero k", "c.json", `{"k": 0}`, "k must be at least 1"},
		{"negative starts", "c.yml", "starts: -1", "starts must be non-negative"},
		{"unknown formula", "c.json", `{"formula": "manhattan"}`, "formula"},
		{"unknown strategy", "c.json", `{"strategy": "kmeans"}`, "strategy"},
		{"unknown rank_by", "c.yaml", "rank_by: sumOfSquares", "rank_by"},
		{"unknown objective", "c.yaml", "objectives: [loadRange, nope]", "objectives"},
		{"unknown format", "c.json", `{"format": "xlsx"}`, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRunConfig_TooLarge(t *testing.T) {
	body := `{"k": 2, "format": "` + strings.Repeat("x", maxFileSize) + `"}`
	_, err := LoadRunConfig(writeConfig(t, "big.json", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
