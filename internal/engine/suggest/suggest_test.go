package suggest

import (
	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/usermodel"
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func fixture() (*graph.Holder, *usermodel.Model, map[string]*graph.Node) {
	nodes := []*graph.Node{
		{ID: "app", Path: "/src/app.js", Name: "app.js", Language: "javascript"},
		{ID: "util", Path: "/src/util.js", Name: "util.js", Language: "javascript"},
		{ID: "db", Path: "/src/db.js", Name: "db.js", Language: "javascript"},
		{ID: "model", Path: "/lib/model.py", Name: "model.py", Language: "python"},
		{ID: "readme", Path: "/docs/readme.md", Name: "readme.md"},
	}
	edges := []graph.Edge{
		{Source: "app", Target: "util"},
		{Source: "app", Target: "db"},
		{Source: "model", Target: "db"},
	}
	byID := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	model := usermodel.New(usermodel.Options{Now: func() time.Time { return epoch }})
	return graph.NewHolder(graph.New(nodes, edges, graph.Options{})), model, byID
}

func only(algorithms ...string) Config {
	cfg := DefaultConfig()
	cfg.Algorithms = algorithms
	return cfg
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func files(list []ports.Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.File
	}
	return out
}

type countingLookup struct {
	inner   ports.DependencyLookup
	calls   int
	failing bool
	central []graph.CentralFile
}

func (c *countingLookup) ReverseDependencies(ctx context.Context, path string) ([]*graph.Node, error) {
	c.calls++
	if c.failing {
		return nil, stderrors.New("lookup offline")
	}
	return c.inner.ReverseDependencies(ctx, path)
}

func (c *countingLookup) HighCentralityFiles(ctx context.Context, limit int) ([]graph.CentralFile, error) {
	if c.failing {
		return nil, stderrors.New("lookup offline")
	}
	if c.central != nil {
		return c.central, nil
	}
	return c.inner.HighCentralityFiles(ctx, limit)
}

func TestPersonalized_Dependencies(t *testing.T) {
	catalog, model, nodes := fixture()
	s, err := NewPersonalized(only(StrategyDependency), model, catalog, catalog)
	if err != nil {
		t.Fatalf("NewPersonalized: %v", err)
	}

	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(files(got)) != "[/src/util.js /src/db.js]" {
		t.Fatalf("unexpected suggestions %v", files(got))
	}
	for _, sg := range got {
		if sg.Type != ports.SuggestDependency || !near(sg.Confidence, 0.8) || sg.Reason != "Direct dependency of app.js" {
			t.Fatalf("unexpected dependency suggestion %+v", sg)
		}
	}

	for i := 0; i < 2; i++ {
		model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/lib/model.py", Timestamp: epoch.UnixMilli()})
	}
	got = s.Suggest(context.Background(), nodes["db"], ports.SuggestionContext{})
	if fmt.Sprint(files(got)) != "[/lib/model.py /src/app.js]" {
		t.Fatalf("unexpected reverse suggestions %v", files(got))
	}
	if got[0].Type != ports.SuggestReverseDependency || !near(got[0].Confidence, 1.0) || got[0].Reason != "Depends on db.js" {
		t.Fatalf("unexpected reverse suggestion %+v", got[0])
	}
	if !near(got[1].Confidence, 0.7) {
		t.Fatalf("expected base reverse confidence, got %f", got[1].Confidence)
	}
}

func TestPersonalized_DedupesAcrossStrategies(t *testing.T) {
	catalog, model, nodes := fixture()
	s, err := NewPersonalized(only(StrategyDependency, StrategySimilarity), model, catalog, catalog)
	if err != nil {
		t.Fatalf("NewPersonalized: %v", err)
	}
	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if len(got) != 2 {
		t.Fatalf("expected 2 unique files, got %v", files(got))
	}
	for _, sg := range got {
		if sg.Type != ports.SuggestDependency {
			t.Fatalf("expected first strategy to win, got %s for %s", sg.Type, sg.File)
		}
	}
}

func TestPersonalized_Similarity(t *testing.T) {
	catalog, model, nodes := fixture()
	s, _ := NewPersonalized(only(StrategySimilarity), model, catalog, nil)
	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if len(got) != 2 {
		t.Fatalf("expected the two siblings, got %v", files(got))
	}
	// same language 0.3 + same dir 0.4 + one shared token of three 0.1 = 0.8
	for _, sg := range got {
		if !near(sg.Confidence, 0.8*0.7+0.5*0.3) || sg.Reason != "Similar to app.js" {
			t.Fatalf("unexpected similarity suggestion %+v", sg)
		}
	}
}

func TestPersonalized_Pattern(t *testing.T) {
	catalog, model, nodes := fixture()
	at := epoch.UnixMilli()
	model.Ingest(usermodel.Interaction{Type: usermodel.FileOpened, FilePath: "/src/app.js", Timestamp: at})
	for i := 1; i <= 3; i++ {
		model.Ingest(usermodel.Interaction{Type: usermodel.FileOpened, FilePath: "/docs/readme.md", Timestamp: at + int64(i)*1000})
	}
	model.Ingest(usermodel.Interaction{Type: usermodel.FileOpened, FilePath: "/lib/model.py", Timestamp: at + 5000})

	s, _ := NewPersonalized(only(StrategyPattern), model, catalog, nil)
	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if len(got) != 1 || got[0].File != "/docs/readme.md" {
		t.Fatalf("expected only the strongly co-accessed file, got %v", files(got))
	}
	if !near(got[0].Confidence, 0.36) || got[0].Type != ports.SuggestPattern {
		t.Fatalf("unexpected pattern suggestion %+v", got[0])
	}
}

func TestPersonalized_Centrality(t *testing.T) {
	catalog, model, nodes := fixture()
	lookup := &countingLookup{inner: catalog, central: []graph.CentralFile{
		{Node: nodes["db"], Importance: graph.ImportanceScore{TotalScore: 0.9, Rank: 1}},
		{Node: nodes["util"], Importance: graph.ImportanceScore{TotalScore: 0.5, Rank: 2}},
		{Node: nodes["model"], Importance: graph.ImportanceScore{TotalScore: 0.4, Rank: 3}},
		{Node: nodes["readme"], Importance: graph.ImportanceScore{TotalScore: 0.3, Rank: 4}},
	}}
	cfg := only(StrategyCentrality)
	cfg.Threshold = 0
	s, _ := NewPersonalized(cfg, model, catalog, lookup)

	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(files(got)) != "[/src/db.js /src/util.js /lib/model.py]" {
		t.Fatalf("expected top three central files, got %v", files(got))
	}
	if !near(got[0].Confidence, 0.54) || got[0].Reason != "Important file in codebase (rank #1)" {
		t.Fatalf("unexpected centrality suggestion %+v", got[0])
	}
}

func TestPersonalized_LookupFailureDegrades(t *testing.T) {
	catalog, model, nodes := fixture()
	lookup := &countingLookup{inner: catalog, failing: true}
	s, _ := NewPersonalized(only(StrategyDependency, StrategyCentrality), model, catalog, lookup)

	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(files(got)) != "[/src/util.js /src/db.js]" {
		t.Fatalf("expected direct dependencies only, got %v", files(got))
	}
}

func TestPersonalized_CacheFollowsModelVersion(t *testing.T) {
	catalog, model, nodes := fixture()
	lookup := &countingLookup{inner: catalog}
	s, _ := NewPersonalized(only(StrategyDependency), model, catalog, lookup)
	ctx := context.Background()

	s.Suggest(ctx, nodes["app"], ports.SuggestionContext{})
	s.Suggest(ctx, nodes["app"], ports.SuggestionContext{})
	if lookup.calls != 1 {
		t.Fatalf("expected cached second call, got %d lookups", lookup.calls)
	}

	s.Suggest(ctx, nodes["app"], ports.SuggestionContext{Exclude: []string{"/src/db.js"}})
	if lookup.calls != 2 {
		t.Fatalf("expected exclusions to miss the cache, got %d lookups", lookup.calls)
	}

	model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/src/db.js", Timestamp: epoch.UnixMilli()})
	s.Suggest(ctx, nodes["app"], ports.SuggestionContext{})
	if lookup.calls != 3 {
		t.Fatalf("expected a model update to invalidate, got %d lookups", lookup.calls)
	}
}

func TestPersonalized_CacheFollowsGraphReload(t *testing.T) {
	catalog, model, nodes := fixture()
	s, _ := NewPersonalized(only(StrategyDependency), model, catalog, catalog)
	ctx := context.Background()

	before := s.Suggest(ctx, nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(files(before)) != "[/src/util.js /src/db.js]" {
		t.Fatalf("unexpected suggestions before reload %v", files(before))
	}

	reloaded := []*graph.Node{nodes["app"], nodes["util"], nodes["db"], nodes["model"], nodes["readme"]}
	catalog.Swap(graph.New(reloaded, []graph.Edge{{Source: "app", Target: "db"}}, graph.Options{}))

	after := s.Suggest(ctx, nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(files(after)) != "[/src/db.js]" {
		t.Fatalf("expected suggestions from the reloaded graph, got %v", files(after))
	}
}

func TestPersonalized_ExcludeAndMax(t *testing.T) {
	catalog, model, nodes := fixture()
	cfg := only(StrategyDependency)
	s, _ := NewPersonalized(cfg, model, catalog, catalog)
	got := s.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{Exclude: []string{"/src/util.js"}})
	if fmt.Sprint(files(got)) != "[/src/db.js]" {
		t.Fatalf("expected excluded file removed, got %v", files(got))
	}

	cfg.Max = 1
	capped, _ := NewPersonalized(cfg, model, catalog, catalog)
	if got := capped.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{}); len(got) != 1 {
		t.Fatalf("expected max 1, got %v", files(got))
	}
	if got := capped.Suggest(context.Background(), nil, ports.SuggestionContext{}); got != nil {
		t.Fatalf("expected nil for no focus file, got %v", got)
	}
}

func TestPersonalized_Contextual(t *testing.T) {
	catalog, model, _ := fixture()
	at := epoch.UnixMilli()
	model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/src/util.js", Timestamp: at})
	model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/lib/model.py", Timestamp: at + 500})
	model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/src/db.js", Timestamp: at + 1000})
	model.Ingest(usermodel.Interaction{Type: usermodel.NodeClick, FilePath: "/src/db.js", Timestamp: at + 2000})

	s, _ := NewPersonalized(DefaultConfig(), model, catalog, catalog)
	got := s.Contextual(context.Background())
	if fmt.Sprint(files(got)) != "[/src/db.js /lib/model.py /src/util.js]" {
		t.Fatalf("unexpected contextual suggestions %v", files(got))
	}
	for i, want := range []float64{0.8, 0.7, 0.6} {
		if !near(got[i].Confidence, want) || got[i].Type != ports.SuggestRecent {
			t.Fatalf("suggestion %d: %+v", i, got[i])
		}
	}
	if got[0].Name != "db.js" {
		t.Fatalf("expected catalog name, got %q", got[0].Name)
	}
}

func TestNewPersonalized_RejectsUnknownStrategy(t *testing.T) {
	catalog, model, _ := fixture()
	_, err := NewPersonalized(only(StrategyDependency, "telepathy"), model, catalog, catalog)
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRandom_Suggest(t *testing.T) {
	catalog, _, nodes := fixture()
	a := NewRandom(DefaultRandomConfig(), catalog, rand.New(rand.NewPCG(7, 8)))
	b := NewRandom(DefaultRandomConfig(), catalog, rand.New(rand.NewPCG(7, 8)))

	got := a.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})
	if fmt.Sprint(got) != fmt.Sprint(b.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})) {
		t.Fatal("expected the same seed to give the same suggestions")
	}
	if len(got) != 4 {
		t.Fatalf("expected every other file, got %v", files(got))
	}

	strict := DefaultRandomConfig()
	strict.Threshold = 0.99
	c := NewRandom(strict, catalog, rand.New(rand.NewPCG(7, 8)))
	if fmt.Sprint(c.Suggest(context.Background(), nodes["app"], ports.SuggestionContext{})) != fmt.Sprint(got) {
		t.Fatal("expected random confidences to be left unfiltered")
	}
	for _, sg := range got {
		if sg.File == "/src/app.js" {
			t.Fatal("current file must not be suggested")
		}
		if sg.Confidence < 0.2 || sg.Confidence >= 0.8 || sg.Type != ports.SuggestRandom {
			t.Fatalf("unexpected random suggestion %+v", sg)
		}
		if !contains(reasons, sg.Reason) {
			t.Fatalf("unexpected reason %q", sg.Reason)
		}
	}
}

func TestRandom_Contextual(t *testing.T) {
	catalog, _, _ := fixture()
	s := NewRandom(DefaultRandomConfig(), catalog, rand.New(rand.NewPCG(1, 1)))
	got := s.Contextual(context.Background())
	if len(got) != 5 {
		t.Fatalf("expected 5 random files, got %v", files(got))
	}
	seen := map[string]bool{}
	for _, sg := range got {
		if seen[sg.File] {
			t.Fatalf("duplicate %s", sg.File)
		}
		seen[sg.File] = true
		if sg.Confidence < 0.3 || sg.Confidence >= 0.8 {
			t.Fatalf("confidence out of range: %f", sg.Confidence)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
