package ports

import (
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/usermodel"
	"context"
)

// Mode selects which variant of every suite component is built.
type Mode string

const (
	ModePersonalized Mode = "personalized"
	ModeRandom       Mode = "random"
)

// UserModelReader is the read side of the user interaction model. Suite
// components never write to the model.
type UserModelReader interface {
	FileInteractionCount(path string) int
	FileEditCount(path string) int
	TotalTimeSpent(path string) int64
	LastAccessTime(path string) int64
	MaxInteractionCount() int
	MaxEditCount() int
	MaxTimeSpent() int64
	FileTemperature(path string) float64
	FileImportance(path string) float64
	FileAffinity(path string) float64
	FileRecency(path string) float64
	HoursSinceAccess(path string) float64
	LanguagePreference(lang string) float64
	LanguagePreferences() map[string]usermodel.LanguagePreference
	CoAccessedFiles(path string) map[string]float64
	FileRelatedness(a, b string) float64
	RecentFiles(limit int) []usermodel.FileStat
	FrequentFiles(limit int) []usermodel.FileStat
	Records() []usermodel.FileStat
	SessionFiles() []string
	InSession(path string) bool
	CurrentContext() usermodel.Context
	Version() uint64
	Now() int64
}

// Catalog is the set of files currently loaded, with their structural data.
type Catalog interface {
	Files() []*graph.Node
	FileByPath(path string) (*graph.Node, bool)
	FileByID(id string) (*graph.Node, bool)
	Importance(id string) graph.ImportanceScore
	DependenciesOf(n *graph.Node) []*graph.Node
	Related(a, b *graph.Node) bool
	Languages() []string
	// Generation changes whenever the underlying graph is replaced.
	Generation() uint64
}

// DependencyLookup answers reverse-dependency and centrality queries. Callers
// treat any error as an empty answer.
type DependencyLookup interface {
	ReverseDependencies(ctx context.Context, path string) ([]*graph.Node, error)
	HighCentralityFiles(ctx context.Context, limit int) ([]graph.CentralFile, error)
}

// ContentSource returns file contents for search previews.
type ContentSource interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// BookmarkStore persists a user's bookmarks.
type BookmarkStore interface {
	ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error)
	SaveBookmark(ctx context.Context, b Bookmark) error
	DeleteBookmark(ctx context.Context, userID, id string) error
}

// Layout places nodes in 3D space and sizes them.
type Layout interface {
	Mode() Mode
	Position(n *graph.Node) Position
	Size(n *graph.Node) float64
	Importance(n *graph.Node) graph.ImportanceScore
	Annotate(nodes []*graph.Node) []AnnotatedNode
}

// Coloring colors nodes and edges.
type Coloring interface {
	Mode() Mode
	NodeColor(n *graph.Node) string
	EdgeColor(e graph.Edge) string
	EdgeWidth(e graph.Edge) float64
	Scheme() ColorScheme
}

type Search interface {
	Mode() Mode
	Search(ctx context.Context, query string) []SearchResult
	History() []string
}

type Suggestions interface {
	Mode() Mode
	Suggest(ctx context.Context, current *graph.Node, sctx SuggestionContext) []Suggestion
	Contextual(ctx context.Context) []Suggestion
}

type Filtering interface {
	Mode() Mode
	DefaultLanguages() []string
	Apply(nodes []*graph.Node, active []string) []*graph.Node
	Preferences() FilterPreferences
}

type Ranking interface {
	Mode() Mode
	SortBookmarks(list []Bookmark, criterion BookmarkCriterion) []Bookmark
	BookmarkStats(b Bookmark) string
	RankFiles(nodes []*graph.Node) []*graph.Node
}
