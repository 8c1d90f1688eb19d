// Package powerup tracks the limited-use boosts available in the current
// session. The registry lives in memory only; a restart clears it.
package powerup

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"brain-arcade/internal/pkg/notify"
)

// ErrUnknownType is returned when granting a type outside the catalog.
var ErrUnknownType = errors.New("unknown power-up type")

// PowerUp is one live registry entry. At most one entry exists per Type.
type PowerUp struct {
	ID       string `json:"id"`
	Type     Type   `json:"type"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	UsesLeft int    `json:"usesLeft"`
}

// Manager owns the registry. Every mutating call completes, including the
// broadcast, before it returns.
type Manager struct {
	mu      sync.Mutex
	entries []PowerUp // grant order
	changes *notify.Broadcaster[[]PowerUp]
	newID   func() string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		changes: notify.New[[]PowerUp]("powerup"),
		newID:   uuid.NewString,
	}
}

func (m *Manager) indexByID(id string) int {
	return slices.IndexFunc(m.entries, func(p PowerUp) bool { return p.ID == id })
}

func (m *Manager) indexByType(t Type) int {
	return slices.IndexFunc(m.entries, func(p PowerUp) bool { return p.Type == t })
}

// Grant adds uses of type t. An existing entry of that type absorbs the uses;
// otherwise a new inactive entry is created. uses below one count as one and
// an empty name falls back to the catalog name.
func (m *Manager) Grant(t Type, name string, uses int) (PowerUp, error) {
	info, ok := Lookup(t)
	if !ok {
		return PowerUp{}, ErrUnknownType
	}
	if uses < 1 {
		uses = 1
	}
	if name == "" {
		name = info.Name
	}

	m.mu.Lock()
	var granted PowerUp
	if i := m.indexByType(t); i >= 0 {
		m.entries[i].UsesLeft += uses
		granted = m.entries[i]
	} else {
		granted = PowerUp{ID: m.newID(), Type: t, Name: name, UsesLeft: uses}
		m.entries = append(m.entries, granted)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	log.Debug().Str("type", string(t)).Int("uses", uses).Int("uses_left", granted.UsesLeft).Msg("Power-up granted")
	m.changes.Publish(snap)
	return granted, nil
}

// Consume spends one use of the entry with id and marks it active. The entry
// is removed once its uses reach zero. Unknown or exhausted ids return false
// and change nothing.
func (m *Manager) Consume(id string) bool {
	m.mu.Lock()
	i := m.indexByID(id)
	if i < 0 || m.entries[i].UsesLeft <= 0 {
		m.mu.Unlock()
		return false
	}

	m.entries[i].Active = true
	m.entries[i].UsesLeft--
	if m.entries[i].UsesLeft == 0 {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.changes.Publish(snap)
	return true
}

// Deactivate ends the effect window of the entry with id. Absent ids and
// already inactive entries are a no-op.
func (m *Manager) Deactivate(id string) {
	m.mu.Lock()
	i := m.indexByID(id)
	if i < 0 || !m.entries[i].Active {
		m.mu.Unlock()
		return
	}
	m.entries[i].Active = false
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.changes.Publish(snap)
}

// ClearAll empties the registry.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()

	m.changes.Publish([]PowerUp{})
}

// List returns the registry in grant order.
func (m *Manager) List() []PowerUp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Usable returns the entries with uses left.
func (m *Manager) Usable() []PowerUp {
	all := m.List()
	return slices.DeleteFunc(all, func(p PowerUp) bool { return p.UsesLeft <= 0 })
}

// Get returns the entry with id.
func (m *Manager) Get(id string) (PowerUp, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexByID(id); i >= 0 {
		return m.entries[i], true
	}
	return PowerUp{}, false
}

// Subscribe registers fn to receive the full registry after every change.
// Each subscriber gets its own copy.
func (m *Manager) Subscribe(fn func([]PowerUp)) (unsubscribe func()) {
	return m.changes.Subscribe(func(list []PowerUp) {
		fn(slices.Clone(list))
	})
}

func (m *Manager) snapshotLocked() []PowerUp {
	out := make([]PowerUp, len(m.entries))
	copy(out, m.entries)
	return out
}
