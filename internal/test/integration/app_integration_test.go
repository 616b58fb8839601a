package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeflow/internal/core/app"
	"codeflow/internal/core/config"
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/usermodel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphYAML = `nodes:
  - id: main
    path: /cmd/main.go
    name: main.go
    language: go
    dependencies: [handler]
  - id: handler
    path: /api/user_handler.go
    name: user_handler.go
    language: go
    dependencies: [model]
  - id: model
    path: /models/user_model.go
    name: user_model.go
    language: go
  - id: view
    path: /web/user_view.ts
    name: user_view.ts
    language: typescript
    dependencies: [handler]
`

func createProject(t *testing.T, mode string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	write("graph.yaml", graphYAML)
	write("src/models/user_model.go", "package models\n\ntype User struct{}\n")
	write("codeflow.toml", `
[suite]
mode = "`+mode+`"
seed = 11

[user]
id = "ana"

[graph]
path = "graph.yaml"
content_root = "src"

[db]
path = "state/codeflow.db"

[persistence]
flush_every = 2
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "state"), 0o755))
	return filepath.Join(dir, "codeflow.toml")
}

func TestPersonalizedPipeline(t *testing.T) {
	cfgPath := createProject(t, "personalized")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	require.NoError(t, err)

	model, _ := a.Graph.FileByPath("/models/user_model.go")
	view, _ := a.Graph.FileByPath("/web/user_view.ts")
	require.NotNil(t, model)
	require.NotNil(t, view)
	coldSize := a.Suite.Layout.Size(view)

	now := time.Now().UnixMilli()
	for i := 0; i < 4; i++ {
		require.True(t, a.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: view.Path, Timestamp: now, Language: "typescript"}))
	}
	require.True(t, a.Ingest(usermodel.Interaction{Type: usermodel.CodeEdited, FilePath: view.Path, Timestamp: now}))
	require.True(t, a.Ingest(usermodel.Interaction{Type: usermodel.TimeSpent, FilePath: view.Path, Timestamp: now, Duration: 60_000}))

	assert.Greater(t, a.Suite.Layout.Size(view), coldSize, "interaction grows the node")

	results := a.Suite.Search.Search(ctx, "user")
	require.NotEmpty(t, results)
	assert.Equal(t, view.Path, results[0].Path, "personal boost puts the used file first")
	for _, r := range results {
		if r.Path == model.Path {
			assert.Contains(t, r.Preview, "package models")
		}
	}

	suggestions := a.Suite.Suggestions.Suggest(ctx, view, ports.SuggestionContext{})
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "/api/user_handler.go", suggestions[0].File)
	seen := map[string]bool{}
	for _, s := range suggestions {
		assert.False(t, seen[s.File], "duplicate suggestion %s", s.File)
		seen[s.File] = true
		assert.GreaterOrEqual(t, s.Confidence, cfg.Suggestions.Threshold)
		assert.NotEqual(t, view.Path, s.File)
	}

	assert.Equal(t, []string{"typescript"}, a.Suite.Filtering.DefaultLanguages())
	ranked := a.Suite.Ranking.RankFiles(a.Graph.Current().Nodes())
	assert.Equal(t, view.Path, ranked[0].Path)

	require.NoError(t, a.Close())

	restored, err := app.New(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, restored.Model.FileInteractionCount(view.Path))
	assert.Equal(t, 1, restored.Model.FileEditCount(view.Path))
	assert.Equal(t, int64(60_000), restored.Model.TotalTimeSpent(view.Path))
	require.True(t, restored.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: model.Path, Timestamp: now + 1, Language: "go"}))
	require.NoError(t, restored.Close())

	third, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer third.Close()
	assert.Equal(t, 4, third.Model.FileInteractionCount(view.Path))
	assert.Equal(t, 1, third.Model.FileInteractionCount(model.Path), "second-session clicks survive the next restart")
}

func TestRandomPipelineIsSeeded(t *testing.T) {
	ctx := context.Background()
	open := func() *app.App {
		cfg, err := config.Load(createProject(t, "random"))
		require.NoError(t, err)
		cfg.DB.Enabled = false
		a, err := app.New(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })
		return a
	}
	first, second := open(), open()

	assert.Equal(t, ports.ModeRandom, first.Suite.Mode)
	pathsOf := func(rs []ports.SearchResult) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.Path)
		}
		return out
	}
	assert.Equal(t, pathsOf(first.Suite.Search.Search(ctx, "user")), pathsOf(second.Suite.Search.Search(ctx, "user")))

	view, _ := first.Graph.FileByPath("/web/user_view.ts")
	assert.Equal(t, first.Suite.Layout.Position(view), second.Suite.Layout.Position(view))
	assert.Equal(t, first.Suite.Coloring.NodeColor(view), second.Suite.Coloring.NodeColor(view))
	for _, r := range first.Suite.Search.Search(ctx, "user") {
		assert.Empty(t, r.Preview, "random search never fetches previews")
	}
}
