// # internal/engine/usermodel/model.go
package usermodel

import (
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// LanguageUsageStep is added to a language's usage score per event.
	LanguageUsageStep = 0.1
	// CoAccessWindow bounds how far apart two events may be to count as
	// co-accessed.
	CoAccessWindow = 5 * time.Minute
	// CoAccessStep is the strength added per qualifying pairing.
	CoAccessStep = 0.1
	// DefaultFlushEvery is how many accepted events trigger a flush.
	DefaultFlushEvery = 10

	temperatureWindow    = 24 * time.Hour
	recencyWindow        = 48 * time.Hour
	temperatureClicksCap = 10
	temperatureTimeCap   = 5 * time.Minute

	recentInteractionsInContext = 10
)

type InteractionType string

const (
	FileOpened   InteractionType = "file_opened"
	FileSelected InteractionType = "file_selected"
	NodeClick    InteractionType = "node_click"
	CodeEdited   InteractionType = "code_edited"
	TimeSpent    InteractionType = "time_spent"
)

// Known reports whether t is one of the recognized interaction types.
func (t InteractionType) Known() bool {
	switch t {
	case FileOpened, FileSelected, NodeClick, CodeEdited, TimeSpent:
		return true
	}
	return false
}

// Interaction is one raw UI event. Timestamp and Duration are milliseconds.
type Interaction struct {
	Type      InteractionType `json:"type"`
	FilePath  string          `json:"filePath"`
	Timestamp int64           `json:"timestamp"`
	Duration  int64           `json:"duration,omitempty"`
	Language  string          `json:"language,omitempty"`
}

// FileInteraction holds the monotonic counters tracked per file.
type FileInteraction struct {
	ClickCount int    `json:"clickCount"`
	EditCount  int    `json:"editCount"`
	TotalTime  int64  `json:"totalTime"`
	LastAccess int64  `json:"lastAccess"`
	Language   string `json:"language,omitempty"`
}

// LanguagePreference is the raw per-language usage. UsageScore is unbounded;
// read it through Model.LanguagePreference.
type LanguagePreference struct {
	UsageScore float64 `json:"usageScore"`
	FileCount  int     `json:"fileCount"`
	TotalTime  int64   `json:"totalTime"`
}

// FileStat pairs a path with its counters.
type FileStat struct {
	Path string
	FileInteraction
}

// Context describes the running session.
type Context struct {
	SessionID          string
	CurrentFiles       []string
	RecentInteractions []Interaction
	SessionDuration    time.Duration
}

// FlushFunc receives a snapshot every FlushEvery accepted events. It must
// not block.
type FlushFunc func(Snapshot)

type Options struct {
	UserID     string
	FlushEvery int
	Now        func() time.Time
	OnFlush    FlushFunc
}

// Model is the per-user interaction model. Ingest is its only writer; every
// other method is a read.
type Model struct {
	mu sync.RWMutex

	userID    string
	sessionID string
	start     int64

	files     map[string]*FileInteraction
	languages map[string]*LanguagePreference
	session   []Interaction
	opened    []string
	openedSet map[string]bool

	version    uint64
	accepted   int
	flushEvery int
	now        func() time.Time
	onFlush    FlushFunc
}

func New(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &Model{
		userID:     opts.UserID,
		sessionID:  uuid.NewString(),
		start:      now().UnixMilli(),
		files:      make(map[string]*FileInteraction),
		languages:  make(map[string]*LanguagePreference),
		openedSet:  make(map[string]bool),
		flushEvery: flushEvery,
		now:        now,
		onFlush:    opts.OnFlush,
	}
}

// Ingest applies one interaction. Events with an unknown type or no file
// path are ignored and return false.
func (m *Model) Ingest(in Interaction) bool {
	if !in.Type.Known() || in.FilePath == "" {
		observability.InteractionsIgnoredTotal.Inc()
		return false
	}

	m.mu.Lock()
	rec, ok := m.files[in.FilePath]
	if !ok {
		rec = &FileInteraction{}
		m.files[in.FilePath] = rec
	}
	switch in.Type {
	case FileOpened, FileSelected, NodeClick:
		rec.ClickCount++
		rec.LastAccess = in.Timestamp
	case CodeEdited:
		rec.EditCount++
	case TimeSpent:
		if in.Duration > 0 {
			rec.TotalTime += in.Duration
		}
	}

	if in.Language != "" {
		lang, ok := m.languages[in.Language]
		if !ok {
			lang = &LanguagePreference{}
			m.languages[in.Language] = lang
		}
		lang.UsageScore += LanguageUsageStep
		if rec.Language != in.Language {
			lang.FileCount++
			rec.Language = in.Language
		}
		if in.Type == TimeSpent && in.Duration > 0 {
			lang.TotalTime += in.Duration
		}
	}

	if in.Type == FileOpened && !m.openedSet[in.FilePath] {
		m.openedSet[in.FilePath] = true
		m.opened = append(m.opened, in.FilePath)
	}
	m.session = append(m.session, in)
	m.version++
	m.accepted++

	var snap *Snapshot
	if m.onFlush != nil && m.accepted%m.flushEvery == 0 {
		s := m.snapshotLocked()
		snap = &s
	}
	m.mu.Unlock()

	observability.InteractionsIngestedTotal.WithLabelValues(string(in.Type)).Inc()
	if snap != nil {
		m.onFlush(*snap)
	}
	return true
}

// Version is a logical clock advanced by every accepted interaction.
func (m *Model) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// LastUpdate is the version observed by caches keyed on model state.
func (m *Model) LastUpdate() uint64 {
	return m.Version()
}

func (m *Model) UserID() string {
	return m.userID
}

// Now returns the model's clock in epoch milliseconds.
func (m *Model) Now() int64 {
	return m.now().UnixMilli()
}

func (m *Model) record(path string) (FileInteraction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.files[path]
	if !ok {
		return FileInteraction{}, false
	}
	return *rec, true
}

func (m *Model) FileInteractionCount(path string) int {
	rec, _ := m.record(path)
	return rec.ClickCount
}

func (m *Model) FileEditCount(path string) int {
	rec, _ := m.record(path)
	return rec.EditCount
}

func (m *Model) TotalTimeSpent(path string) int64 {
	rec, _ := m.record(path)
	return rec.TotalTime
}

func (m *Model) LastAccessTime(path string) int64 {
	rec, _ := m.record(path)
	return rec.LastAccess
}

// MaxInteractionCount is the largest click count over all files, at least 1.
func (m *Model) MaxInteractionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := 1
	for _, rec := range m.files {
		if rec.ClickCount > best {
			best = rec.ClickCount
		}
	}
	return best
}

func (m *Model) MaxEditCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := 1
	for _, rec := range m.files {
		if rec.EditCount > best {
			best = rec.EditCount
		}
	}
	return best
}

func (m *Model) MaxTimeSpent() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := int64(1)
	for _, rec := range m.files {
		if rec.TotalTime > best {
			best = rec.TotalTime
		}
	}
	return best
}

func (m *Model) elapsed(lastAccess int64) time.Duration {
	d := time.Duration(m.Now()-lastAccess) * time.Millisecond
	if d < 0 {
		return 0
	}
	return d
}

// FileTemperature blends linear 24h recency (0.4), clicks/10 (0.4) and
// time/5min (0.2). A file with no record is 0.5.
func (m *Model) FileTemperature(path string) float64 {
	rec, ok := m.record(path)
	if !ok {
		return 0.5
	}
	recency := 0.0
	if rec.LastAccess > 0 {
		recency = math.Max(0, 1-float64(m.elapsed(rec.LastAccess))/float64(temperatureWindow))
	}
	frequency := math.Min(1, float64(rec.ClickCount)/temperatureClicksCap)
	timeScore := math.Min(1, float64(rec.TotalTime)/float64(temperatureTimeCap.Milliseconds()))
	return util.Clamp01(recency*0.4 + frequency*0.4 + timeScore*0.2)
}

// FileImportance blends clicks, edits and time, each over its maximum
// (0.5/0.3/0.2).
func (m *Model) FileImportance(path string) float64 {
	rec, ok := m.record(path)
	if !ok {
		return 0
	}
	clicks := float64(rec.ClickCount) / float64(m.MaxInteractionCount())
	edits := float64(rec.EditCount) / float64(m.MaxEditCount())
	spent := float64(rec.TotalTime) / float64(m.MaxTimeSpent())
	return util.Clamp01(clicks*0.5 + edits*0.3 + spent*0.2)
}

// FileAffinity is the file's click count over the maximum, in [0,1].
func (m *Model) FileAffinity(path string) float64 {
	return util.Clamp01(float64(m.FileInteractionCount(path)) / float64(m.MaxInteractionCount()))
}

// FileRecency decays linearly from 1 to 0 over 48 hours since last access.
func (m *Model) FileRecency(path string) float64 {
	last := m.LastAccessTime(path)
	if last <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(m.elapsed(last))/float64(recencyWindow))
}

// HoursSinceAccess is the elapsed time since the last access in hours, or
// +Inf when the file was never accessed.
func (m *Model) HoursSinceAccess(path string) float64 {
	last := m.LastAccessTime(path)
	if last <= 0 {
		return math.Inf(1)
	}
	return m.elapsed(last).Hours()
}

// LanguagePreference normalizes the raw usage score by the largest score
// across languages. Unknown or empty languages are 0.5.
func (m *Model) LanguagePreference(lang string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pref, ok := m.languages[lang]
	if lang == "" || !ok {
		return 0.5
	}
	best := 0.0
	for _, p := range m.languages {
		if p.UsageScore > best {
			best = p.UsageScore
		}
	}
	if best <= 0 {
		return 0.5
	}
	return util.Clamp01(pref.UsageScore / best)
}

// LanguagePreferences returns a copy of the raw per-language data.
func (m *Model) LanguagePreferences() map[string]LanguagePreference {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]LanguagePreference, len(m.languages))
	for lang, p := range m.languages {
		out[lang] = *p
	}
	return out
}

// CoAccessedFiles scans the session for file_opened/file_selected events on
// path and adds CoAccessStep for every event on another file strictly within
// CoAccessWindow of one of them. Values are not capped.
func (m *Model) CoAccessedFiles(path string) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var anchors []int64
	for _, in := range m.session {
		if in.FilePath == path && (in.Type == FileOpened || in.Type == FileSelected) {
			anchors = append(anchors, in.Timestamp)
		}
	}
	out := make(map[string]float64)
	window := CoAccessWindow.Milliseconds()
	for _, at := range anchors {
		for _, in := range m.session {
			if in.FilePath == path {
				continue
			}
			delta := in.Timestamp - at
			if delta < 0 {
				delta = -delta
			}
			if delta < window {
				out[in.FilePath] += CoAccessStep
			}
		}
	}
	return out
}

// FileRelatedness is the co-access strength of b relative to a.
func (m *Model) FileRelatedness(a, b string) float64 {
	return m.CoAccessedFiles(a)[b]
}

// RecentFiles returns up to limit files ordered by last access, newest first.
func (m *Model) RecentFiles(limit int) []FileStat {
	return m.topFiles(limit, func(a, b FileStat) bool {
		return a.LastAccess > b.LastAccess
	})
}

// FrequentFiles returns up to limit files ordered by click count.
func (m *Model) FrequentFiles(limit int) []FileStat {
	return m.topFiles(limit, func(a, b FileStat) bool {
		return a.ClickCount > b.ClickCount
	})
}

func (m *Model) topFiles(limit int, less func(a, b FileStat) bool) []FileStat {
	if limit <= 0 {
		return nil
	}
	stats := m.Records()
	sort.SliceStable(stats, func(i, j int) bool {
		if less(stats[i], stats[j]) {
			return true
		}
		if less(stats[j], stats[i]) {
			return false
		}
		return stats[i].Path < stats[j].Path
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// Records returns every tracked file sorted by path.
func (m *Model) Records() []FileStat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileStat, 0, len(m.files))
	for path, rec := range m.files {
		out = append(out, FileStat{Path: path, FileInteraction: *rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SessionFiles lists the distinct files opened this session in open order.
func (m *Model) SessionFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.opened...)
}

// InSession reports whether path was opened this session.
func (m *Model) InSession(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.openedSet[path]
}

// SessionInteractions returns a copy of the raw session events.
func (m *Model) SessionInteractions() []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Interaction(nil), m.session...)
}

func (m *Model) CurrentContext() Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recent := m.session
	if len(recent) > recentInteractionsInContext {
		recent = recent[len(recent)-recentInteractionsInContext:]
	}
	return Context{
		SessionID:          m.sessionID,
		CurrentFiles:       append([]string(nil), m.opened...),
		RecentInteractions: append([]Interaction(nil), recent...),
		SessionDuration:    time.Duration(m.now().UnixMilli()-m.start) * time.Millisecond,
	}
}
