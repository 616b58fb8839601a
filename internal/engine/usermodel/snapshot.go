// # internal/engine/usermodel/snapshot.go
package usermodel

import (
	"context"
	"log/slog"
	"time"
)

// Snapshot is the persisted part of a model: file counters and language
// preferences. Session events are not persisted.
type Snapshot struct {
	UserID    string                        `json:"userId"`
	Version   uint64                        `json:"version"`
	SavedAt   int64                         `json:"savedAt"`
	Files     map[string]FileInteraction    `json:"fileInteractions"`
	Languages map[string]LanguagePreference `json:"languagePreferences"`
}

// Persistence loads and saves snapshots. A nil snapshot with a nil error
// means the user has nothing stored yet.
type Persistence interface {
	LoadModel(ctx context.Context, userID string) (*Snapshot, error)
	SaveModel(ctx context.Context, snap Snapshot) error
}

// Snapshot copies the model's persistent state.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() Snapshot {
	snap := Snapshot{
		UserID:    m.userID,
		Version:   m.version,
		SavedAt:   m.now().UnixMilli(),
		Files:     make(map[string]FileInteraction, len(m.files)),
		Languages: make(map[string]LanguagePreference, len(m.languages)),
	}
	for path, rec := range m.files {
		snap.Files[path] = *rec
	}
	for lang, pref := range m.languages {
		snap.Languages[lang] = *pref
	}
	return snap
}

// restore replaces the counters with the snapshot's and continues its
// version, so later saves order after what is already stored. Only called
// before the model is shared.
func (m *Model) restore(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, rec := range snap.Files {
		if path == "" {
			continue
		}
		r := rec
		m.files[path] = &r
	}
	for lang, pref := range snap.Languages {
		if lang == "" {
			continue
		}
		p := pref
		m.languages[lang] = &p
	}
	m.version = max(m.version, snap.Version)
	if m.version == 0 && (len(m.files) > 0 || len(m.languages) > 0) {
		m.version = 1
	}
}

// FromSnapshot builds a model seeded with snap.
func FromSnapshot(snap *Snapshot, opts Options) *Model {
	m := New(opts)
	if snap != nil {
		m.restore(snap)
	}
	return m
}

// Load builds a model for opts.UserID from the store. Any load failure is
// logged and yields an empty model.
func Load(ctx context.Context, store Persistence, opts Options, timeout time.Duration) *Model {
	if store == nil {
		return New(opts)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	snap, err := store.LoadModel(ctx, opts.UserID)
	if err != nil {
		slog.Warn("failed to load user model, starting empty", "user", opts.UserID, "error", err)
		return New(opts)
	}
	if snap == nil {
		slog.Debug("no stored user model", "user", opts.UserID)
		return New(opts)
	}
	slog.Debug("user model loaded", "user", opts.UserID, "files", len(snap.Files), "languages", len(snap.Languages))
	return FromSnapshot(snap, opts)
}
