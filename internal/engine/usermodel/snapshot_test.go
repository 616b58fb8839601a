// # internal/engine/usermodel/snapshot_test.go
package usermodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPersistence struct {
	mu      sync.Mutex
	stored  map[string]Snapshot
	loadErr error
	saveErr error
	saves   int
	saved   chan Snapshot
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{stored: make(map[string]Snapshot), saved: make(chan Snapshot, 16)}
}

func (p *memoryPersistence) LoadModel(_ context.Context, userID string) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	snap, ok := p.stored[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (p *memoryPersistence) SaveModel(_ context.Context, snap Snapshot) error {
	p.mu.Lock()
	p.saves++
	err := p.saveErr
	if err == nil {
		p.stored[snap.UserID] = snap
	}
	p.mu.Unlock()
	p.saved <- snap
	return err
}

func TestLoad_RestoresSnapshot(t *testing.T) {
	store := newMemoryPersistence()
	store.stored["u1"] = Snapshot{
		UserID: "u1",
		Files: map[string]FileInteraction{
			"/a.go": {ClickCount: 7, EditCount: 2, TotalTime: 900, LastAccess: 42, Language: "go"},
		},
		Languages: map[string]LanguagePreference{"go": {UsageScore: 0.9, FileCount: 1}},
	}

	m := Load(context.Background(), store, Options{UserID: "u1"}, time.Second)
	assert.Equal(t, 7, m.FileInteractionCount("/a.go"))
	assert.Equal(t, 2, m.FileEditCount("/a.go"))
	assert.Equal(t, int64(42), m.LastAccessTime("/a.go"))
	assert.InDelta(t, 1.0, m.LanguagePreference("go"), 1e-9)
	assert.Equal(t, uint64(1), m.Version())
	assert.Empty(t, m.SessionInteractions())
}

func TestLoad_ContinuesStoredVersion(t *testing.T) {
	store := newMemoryPersistence()
	store.stored["u1"] = Snapshot{
		UserID:  "u1",
		Version: 40,
		Files:   map[string]FileInteraction{"/a.go": {ClickCount: 40}},
	}

	m := Load(context.Background(), store, Options{UserID: "u1"}, 0)
	assert.Equal(t, uint64(40), m.Version())

	m.Ingest(Interaction{Type: NodeClick, FilePath: "/b.go", Timestamp: 1})
	snap := m.Snapshot()
	assert.Equal(t, uint64(41), snap.Version)
	assert.Equal(t, 1, snap.Files["/b.go"].ClickCount)
	assert.Equal(t, 40, snap.Files["/a.go"].ClickCount)
}

func TestLoad_DegradesToEmpty(t *testing.T) {
	store := newMemoryPersistence()
	store.loadErr = errors.New("disk on fire")

	m := Load(context.Background(), store, Options{UserID: "u1"}, 0)
	require.NotNil(t, m)
	assert.Empty(t, m.Records())
	assert.Equal(t, 0.5, m.FileTemperature("/a.go"))

	assert.Empty(t, Load(context.Background(), nil, Options{}, 0).Records())
	assert.Empty(t, Load(context.Background(), newMemoryPersistence(), Options{UserID: "new"}, 0).Records())
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := New(Options{UserID: "u1"})
	m.Ingest(Interaction{Type: NodeClick, FilePath: "/a", Timestamp: 1, Language: "go"})

	snap := m.Snapshot()
	m.Ingest(Interaction{Type: NodeClick, FilePath: "/a", Timestamp: 2, Language: "go"})

	assert.Equal(t, 1, snap.Files["/a"].ClickCount)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, 2, m.FileInteractionCount("/a"))
}

func TestFlusher_SavesOffIngestPath(t *testing.T) {
	store := newMemoryPersistence()
	f := NewFlusher(store, FlusherConfig{QueueCapacity: 4})
	m := New(Options{UserID: "u1", FlushEvery: 2, OnFlush: f.Submit})

	for i := 0; i < 4; i++ {
		m.Ingest(Interaction{Type: NodeClick, FilePath: "/a", Timestamp: int64(i)})
	}
	require.NoError(t, f.Close())

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.GreaterOrEqual(t, store.saves, 1)
	assert.Equal(t, 4, store.stored["u1"].Files["/a"].ClickCount)
}

func TestFlusher_SaveErrorIsAbsorbed(t *testing.T) {
	store := newMemoryPersistence()
	store.saveErr = errors.New("readonly")
	f := NewFlusher(store, FlusherConfig{})
	m := New(Options{UserID: "u1", FlushEvery: 1, OnFlush: f.Submit})

	assert.True(t, m.Ingest(Interaction{Type: NodeClick, FilePath: "/a", Timestamp: 1}))
	select {
	case <-store.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a save attempt")
	}
	assert.True(t, m.Ingest(Interaction{Type: NodeClick, FilePath: "/a", Timestamp: 2}))
	require.NoError(t, f.Close())
	assert.Equal(t, 2, m.FileInteractionCount("/a"))
}

func TestLatest_PicksHighestVersion(t *testing.T) {
	got := latest([]Snapshot{{Version: 3}, {Version: 7}, {Version: 5}})
	assert.Equal(t, uint64(7), got.Version)
}
