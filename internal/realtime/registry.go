package realtime

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry maps a user id to at most one live connection. The first
// connection to register a user wins until it disconnects.
//
// Mutations hold notifyMu from the change until the listener returns, so
// listeners see snapshots in mutation order and the last one delivered is
// the current state. mu only guards entries.
type Registry struct {
	notifyMu sync.Mutex
	mu       sync.Mutex
	entries  map[string]Handle
	listener PresenceListener
	log      *slog.Logger
}

// NewRegistry builds an empty registry. listener may be nil.
func NewRegistry(log *slog.Logger, listener PresenceListener) *Registry {
	return &Registry{
		entries:  make(map[string]Handle),
		listener: listener,
		log:      log,
	}
}

// SetListener replaces the presence listener. It is meant for wiring at
// startup, before the registry sees traffic.
func (r *Registry) SetListener(listener PresenceListener) {
	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()
}

// Add inserts userID -> h unless userID is already registered. It reports
// whether an insertion happened.
func (r *Registry) Add(userID string, h Handle) bool {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if _, exists := r.entries[userID]; exists {
		r.mu.Unlock()
		return false
	}
	r.entries[userID] = h
	snapshot, listener := r.snapshotLocked(), r.listener
	r.mu.Unlock()

	r.log.Info("User registered", "user_id", userID, "handle", h.ID(), "online", len(snapshot))
	if listener != nil {
		listener.PresenceChanged(snapshot)
	}
	return true
}

// Remove deletes every entry bound to h. It reports whether anything was
// removed.
func (r *Registry) Remove(h Handle) bool {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	var removed []string
	for userID, handle := range r.entries {
		if handle.ID() == h.ID() {
			delete(r.entries, userID)
			removed = append(removed, userID)
		}
	}
	if len(removed) == 0 {
		r.mu.Unlock()
		return false
	}
	snapshot, listener := r.snapshotLocked(), r.listener
	r.mu.Unlock()

	r.log.Info("User unregistered", "user_id", removed, "handle", h.ID(), "online", len(snapshot))
	if listener != nil {
		listener.PresenceChanged(snapshot)
	}
	return true
}

// Find returns the connection registered for userID.
func (r *Registry) Find(userID string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.entries[userID]
	return h, ok
}

// Snapshot returns the current entries ordered by user id.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) snapshotLocked() []Entry {
	snapshot := make([]Entry, 0, len(r.entries))
	for userID, h := range r.entries {
		snapshot = append(snapshot, Entry{UserID: userID, Handle: h})
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].UserID < snapshot[j].UserID
	})
	return snapshot
}

// Handles implements Audience with the distinct registered connections.
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]Handle, 0, len(r.entries))
	for _, h := range r.entries {
		handles = append(handles, h)
	}
	return lo.UniqBy(handles, func(h Handle) string { return h.ID() })
}
