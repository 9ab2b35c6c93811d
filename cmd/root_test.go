package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscheck/internal/config"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	}
	return root
}

func TestCollectJSFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.js":                "",
		"src/lib/util.mjs":          "",
		"src/view.jsx":              "",
		"src/types.ts":              "",
		"src/vendor.min.js":         "",
		"node_modules/pkg/index.js": "",
		"dist/bundle.js":            "",
		"pkg/dist/index.js":         "",
		"README.md":                 "",
	})

	files, err := collectJSFiles(config.DefaultConfig(), root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.ElementsMatch(t, []string{"src/app.js", "src/lib/util.mjs", "src/view.jsx"}, rel)
}

func TestCollectJSFiles_ExplicitFile(t *testing.T) {
	root := writeTree(t, map[string]string{"script.cjs": ""})
	path := filepath.Join(root, "script.cjs")

	files, err := collectJSFiles(config.DefaultConfig(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestApplyFlags(t *testing.T) {
	defer func() { formatFlag, verboseFlag, fixFlag = "", false, false }()

	formatFlag, verboseFlag, fixFlag = "json", true, true
	cfg := config.DefaultConfig()
	applyFlags(cfg)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Output.Colors)
	assert.True(t, cfg.Output.Verbose)
	assert.True(t, cfg.Fix.Enabled)
}

func TestApp_RunJSON(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x); }\n",
	})

	cfg := config.DefaultConfig()
	cfg.Output.Format = "json"
	cfg.Output.Colors = false

	var out bytes.Buffer
	result, err := newApp(cfg, newLogger(&bytes.Buffer{}, false), &out).run(context.Background(), []string{filepath.Join(root, "a.js")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalIssues)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.EqualValues(t, 1, decoded["fixable_issues"])
}

func TestApp_RunFix(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "items.forEach(function (item) {\n  if (!item)\n    return;\n  show(item);\n});\n",
	})
	path := filepath.Join(root, "a.js")

	cfg := config.DefaultConfig()
	cfg.Output.Format = "json"
	cfg.Output.Colors = false
	cfg.Fix.Enabled = true

	var out bytes.Buffer
	result, err := newApp(cfg, newLogger(&bytes.Buffer{}, false), &out).run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalIssues)
	assert.Equal(t, 100, result.Score)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "for (let item of items) {\n  if (!item)\n    continue;\n  show(item);\n}\n", string(data))
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
