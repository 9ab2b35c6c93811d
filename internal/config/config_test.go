package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscheck/internal/models"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	for _, rule := range models.AllRules {
		assert.True(t, cfg.IsRuleEnabled(rule), rule)
	}
	assert.True(t, cfg.Rules.PreferForOf.ReceiverAsContext)
	assert.True(t, cfg.Rules.ConsistentChaining.AllowLeadingPropertyAccess)
	assert.Equal(t, models.SeverityMedium, cfg.RuleSeverity(models.RulePreferForOf))
	assert.Equal(t, models.SeverityLow, cfg.RuleSeverity(models.RuleIfNewline))
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".jscheck.yml")
	data := `
output:
  format: json
rules:
  prefer_for_of:
    enabled: true
    severity: high
    receiver_as_context: false
  if_newline:
    enabled: false
    severity: low
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Rules.PreferForOf.ReceiverAsContext)
	assert.Equal(t, models.SeverityHigh, cfg.RuleSeverity(models.RulePreferForOf))
	assert.False(t, cfg.IsRuleEnabled(models.RuleIfNewline))
	assert.True(t, cfg.IsRuleEnabled(models.RuleTopLevelFunction), "untouched rules keep defaults")
	assert.Equal(t, 4, cfg.Analysis.MaxWorkers)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad format", "output:\n  format: html\n"},
		{"no workers", "analysis:\n  max_workers: 0\n"},
		{"bad severity", "rules:\n  top_level_function:\n    enabled: true\n    severity: urgent\n"},
		{"thresholds out of order", "analysis:\n  score_thresholds:\n    excellent: 50\n    good: 75\n"},
		{"no passes", "fix:\n  max_passes: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "jscheck.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestGenerateConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".jscheck.yml")
	require.NoError(t, GenerateConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestIsExcluded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files.Exclude = []string{"dist/**", "*.tmp"}

	tests := []struct {
		path string
		want bool
	}{
		{"dist", true},
		{"pkg/dist", true},
		{"dist/esm", true},
		{"x.tmp", true},
		{"distribution", false},
		{"src/app", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.IsExcluded(tt.path), tt.path)
	}
}

func TestHasSourceExtension(t *testing.T) {
	assert.True(t, HasSourceExtension("src/app.js"))
	assert.True(t, HasSourceExtension("lib/index.mjs"))
	assert.True(t, HasSourceExtension("view.jsx"))
	assert.False(t, HasSourceExtension("types.ts"))
	assert.False(t, HasSourceExtension("README.md"))
}
