// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"jscheck/internal/models"
)

// Config represents the configuration for jscheck
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Fix settings
	Fix FixConfig `yaml:"fix" json:"fix"`

	// Rule-specific configurations
	Rules RulesConfig `yaml:"rules" json:"rules"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`
}

type AnalysisConfig struct {
	// Score thresholds
	ScoreThresholds ScoreThresholds `yaml:"score_thresholds" json:"score_thresholds"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

type ScoreThresholds struct {
	Excellent int `yaml:"excellent" json:"excellent"` // >= 90
	Good      int `yaml:"good" json:"good"`           // >= 75
	Fair      int `yaml:"fair" json:"fair"`           // >= 50
	Poor      int `yaml:"poor" json:"poor"`           // < 50
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Show suggestions and proposed fix text
	ShowSuggestions bool `yaml:"show_suggestions" json:"show_suggestions"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type FixConfig struct {
	// Write fixes back to disk
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Upper bound of analyze/apply rounds per file
	MaxPasses int `yaml:"max_passes" json:"max_passes"`
}

type RulesConfig struct {
	PreferForOf        PreferForOfConfig        `yaml:"prefer_for_of" json:"prefer_for_of"`
	IfNewline          RuleConfig               `yaml:"if_newline" json:"if_newline"`
	TopLevelFunction   RuleConfig               `yaml:"top_level_function" json:"top_level_function"`
	ConsistentChaining ConsistentChainingConfig `yaml:"consistent_chaining" json:"consistent_chaining"`
}

// RuleConfig holds the settings every rule shares.
type RuleConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Severity string `yaml:"severity" json:"severity"`
}

type PreferForOfConfig struct {
	RuleConfig `yaml:",inline" json:",inline"`

	// Replace this with the forEach receiver when no thisArg is passed
	ReceiverAsContext bool `yaml:"receiver_as_context" json:"receiver_as_context"`
}

type ConsistentChainingConfig struct {
	RuleConfig `yaml:",inline" json:",inline"`

	// Tolerate leading single-line accesses such as this.foo or a.b
	AllowLeadingPropertyAccess bool `yaml:"allow_leading_property_access" json:"allow_leading_property_access"`
}

type FilesConfig struct {
	// Include patterns
	Include []string `yaml:"include" json:"include"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Whether to follow symlinks
	FollowSymlinks bool `yaml:"follow_symlinks" json:"follow_symlinks"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

// Extensions are the file extensions analyzed by default.
var Extensions = []string{".js", ".mjs", ".cjs", ".jsx"}

var validFormats = []string{"console", "json"}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			ScoreThresholds: ScoreThresholds{
				Excellent: 90,
				Good:      75,
				Fair:      50,
				Poor:      0,
			},
			MaxWorkers: 4,
		},
		Output: OutputConfig{
			Format:          "console",
			Colors:          true,
			Verbose:         false,
			ShowSuggestions: false,
		},
		Fix: FixConfig{
			Enabled:   false,
			MaxPasses: 10,
		},
		Rules: RulesConfig{
			PreferForOf: PreferForOfConfig{
				RuleConfig:        RuleConfig{Enabled: true, Severity: "medium"},
				ReceiverAsContext: true,
			},
			IfNewline:        RuleConfig{Enabled: true, Severity: "low"},
			TopLevelFunction: RuleConfig{Enabled: true, Severity: "low"},
			ConsistentChaining: ConsistentChainingConfig{
				RuleConfig:                 RuleConfig{Enabled: true, Severity: "low"},
				AllowLeadingPropertyAccess: true,
			},
		},
		Files: FilesConfig{
			Include:        []string{"**/*.js", "**/*.mjs", "**/*.cjs", "**/*.jsx"},
			Exclude:        []string{"node_modules/**", ".git/**", "dist/**"},
			FollowSymlinks: false,
			MaxFileSize:    1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".jscheck.yml",
		".jscheck.yaml",
		"jscheck.yml",
		"jscheck.yaml",
		".config/jscheck.yml",
		".config/jscheck.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	st := c.Analysis.ScoreThresholds
	if st.Excellent < st.Good || st.Good < st.Fair || st.Fair < st.Poor {
		return fmt.Errorf("score thresholds must be in descending order")
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	if c.Fix.MaxPasses < 1 {
		return fmt.Errorf("fix.max_passes must be at least 1")
	}

	for _, rule := range models.AllRules {
		rc := c.ruleConfig(rule)
		if _, err := models.ParseSeverity(rc.Severity); err != nil {
			return fmt.Errorf("rule %s: %w", rule, err)
		}
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

func (c *Config) ruleConfig(rule models.RuleID) RuleConfig {
	switch rule {
	case models.RulePreferForOf:
		return c.Rules.PreferForOf.RuleConfig
	case models.RuleIfNewline:
		return c.Rules.IfNewline
	case models.RuleTopLevelFunction:
		return c.Rules.TopLevelFunction
	case models.RuleConsistentChaining:
		return c.Rules.ConsistentChaining.RuleConfig
	default:
		return RuleConfig{}
	}
}

// IsRuleEnabled checks if a specific rule is enabled
func (c *Config) IsRuleEnabled(rule models.RuleID) bool {
	return c.ruleConfig(rule).Enabled
}

// RuleSeverity returns the configured severity of a rule. Validate has
// already rejected unknown names, so a parse failure falls back to low.
func (c *Config) RuleSeverity(rule models.RuleID) models.Severity {
	sev, err := models.ParseSeverity(c.ruleConfig(rule).Severity)
	if err != nil {
		return models.SeverityLow
	}
	return sev
}

// IsExcluded reports whether path matches one of the exclude patterns.
func (c *Config) IsExcluded(path string) bool {
	for _, pattern := range c.Files.Exclude {
		if matchExclude(pattern, path) {
			return true
		}
	}
	return false
}

// matchExclude matches path against a glob or a directory pattern such as
// "dist/**", which covers the directory itself wherever it sits and
// everything below it.
func matchExclude(pattern, path string) bool {
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/**")
	if !ok {
		return false
	}
	path = filepath.ToSlash(path)
	return path == prefix || strings.HasSuffix(path, "/"+prefix) || strings.HasPrefix(path, prefix+"/")
}

// HasSourceExtension reports whether path has one of the analyzed extensions.
func HasSourceExtension(path string) bool {
	return slices.Contains(Extensions, filepath.Ext(path))
}
