package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	coreapp "codeflow/internal/core/app"
	"codeflow/internal/core/config"
	"codeflow/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliGraph = `{
  "nodes": [
    {"id": "app", "path": "/src/app.go", "name": "app.go", "language": "go"},
    {"id": "util", "path": "/src/util.go", "name": "util.go", "language": "go"},
    {"id": "user", "path": "/src/user.go", "name": "user.go", "language": "go"},
    {"id": "web", "path": "/web/user.ts", "name": "user.ts", "language": "typescript"}
  ],
  "edges": [
    {"source": "app", "target": "util"},
    {"source": "util", "target": "user"},
    {"source": "user", "target": "app"},
    {"source": "web", "target": "user"}
  ]
}`

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-mode", "random", "-seed", "9", "-json", "Search", "user", "model"})
	require.NoError(t, err)
	assert.Equal(t, "random", opts.mode)
	assert.Equal(t, uint64(9), opts.seed)
	assert.True(t, opts.jsonOut)
	assert.Equal(t, "search", opts.command)
	assert.Equal(t, []string{"user", "model"}, opts.args)
	assert.Equal(t, defaultConfigPath, opts.configPath)

	_, err = parseOptions([]string{"-no-such-flag"})
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	applyFlagOverrides(cfg, cliOptions{mode: " Random ", user: "ana", seed: 3})
	assert.Equal(t, "random", cfg.Suite.Mode)
	assert.Equal(t, "ana", cfg.User.ID)
	assert.Equal(t, uint64(3), cfg.Suite.Seed)

	applyFlagOverrides(cfg, cliOptions{})
	assert.Equal(t, "random", cfg.Suite.Mode, "empty flags keep existing values")
}

func TestLoadConfig_RejectsBadModeFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := loadConfig(cliOptions{configPath: "missing.toml", mode: "chaos"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestSplitListAndFirstLine(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
	assert.Equal(t, "package user", firstLine("package user\nfunc x() {}"))
	assert.Len(t, firstLine(strings.Repeat("x", 80)), 60)
}

func newTestApp(t *testing.T, withDB bool) *coreapp.App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Graph.Path = filepath.Join(dir, "graph.json")
	cfg.DB.Enabled = withDB
	cfg.DB.Path = filepath.Join(dir, "codeflow.db")
	require.NoError(t, os.WriteFile(cfg.Graph.Path, []byte(cliGraph), 0o644))

	a, err := coreapp.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func run(t *testing.T, a *coreapp.App, stdin string, args ...string) (string, error) {
	t.Helper()
	opts, err := parseOptions(args)
	require.NoError(t, err)
	var out bytes.Buffer
	err = execute(context.Background(), a, opts, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestExecute_IngestThenRank(t *testing.T) {
	a := newTestApp(t, false)

	events := `{"type":"node_click","filePath":"/web/user.ts"}
{"type":"node_click","filePath":"/web/user.ts"}
{"type":"code_edited","filePath":"/web/user.ts"}
{"type":"hover","filePath":"/web/user.ts"}`
	out, err := run(t, a, events, "ingest", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 3 interactions (1 ignored)")
	assert.Equal(t, 2, a.Model.FileInteractionCount("/web/user.ts"))
	assert.Greater(t, a.Model.LanguagePreference("typescript"), 0.0, "language filled from the graph")

	out, err = run(t, a, "", "-json", "-limit", "2", "rank")
	require.NoError(t, err)
	var ranked []struct {
		Node struct {
			Path string `json:"path"`
		} `json:"node"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "/web/user.ts", ranked[0].Node.Path)
}

func TestExecute_SearchAndSuggest(t *testing.T) {
	a := newTestApp(t, false)

	out, err := run(t, a, "", "search", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "/src/user.go")
	assert.Contains(t, out, "/web/user.ts")

	_, err = run(t, a, "", "search")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	out, err = run(t, a, "", "-json", "suggest", "/src/app.go")
	require.NoError(t, err)
	var suggestions []struct {
		File       string  `json:"file"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &suggestions))
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "/src/util.go", suggestions[0].File)

	_, err = run(t, a, "", "suggest", "/nope.go")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestExecute_GraphQueries(t *testing.T) {
	a := newTestApp(t, false)

	out, err := run(t, a, "", "cycles")
	require.NoError(t, err)
	assert.Contains(t, out, "/src/app.go -> /src/util.go -> /src/user.go -> /src/app.go")

	out, err = run(t, a, "", "chain", "/web/user.ts", "/src/util.go")
	require.NoError(t, err)
	assert.Equal(t, "/web/user.ts -> /src/user.go -> /src/app.go -> /src/util.go\n", out)

	_, err = run(t, a, "", "chain", "/src/app.go", "/web/user.ts")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	out, err = run(t, a, "", "-format", "tsv", "export")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)

	_, err = run(t, a, "", "-format", "svg", "export")
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	out, err = run(t, a, "", "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "/web/user.ts")

	out, err = run(t, a, "", "-json", "filter")
	require.NoError(t, err)
	assert.Contains(t, out, `"defaultLanguages"`)

	out, err = run(t, a, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "up"`)

	_, err = run(t, a, "", "dance")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestExecute_Bookmarks(t *testing.T) {
	_, err := run(t, newTestApp(t, false), "", "bookmarks")
	assert.True(t, errors.IsCode(err, errors.CodeUnavailable))

	a := newTestApp(t, true)
	out, err := run(t, a, "", "-note", "entry point", "bookmarks", "add", "/src/app.go")
	require.NoError(t, err)
	assert.Contains(t, out, "bookmarked /src/app.go")
	_, err = run(t, a, "", "bookmarks", "add", "/src/util.go")
	require.NoError(t, err)

	out, err = run(t, a, "", "-json", "-by", "name", "bookmarks")
	require.NoError(t, err)
	var list []struct {
		Name string `json:"name"`
		Note string `json:"note"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "app.go", list[0].Name)
	assert.Equal(t, "entry point", list[0].Note)

	_, err = run(t, a, "", "bookmarks", "remove", "/src/app.go")
	require.NoError(t, err)
	out, err = run(t, a, "", "-json", "bookmarks")
	require.NoError(t, err)
	assert.NotContains(t, out, "app.go")

	_, err = run(t, a, "", "-by", "size", "bookmarks")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}
