// Package world tracks which avatars occupy which rooms and performs
// relocations. Combat consults it for passive-perception and flee DCs.
package world

import (
	"errors"
	"sync"
)

// RecoveryRoomID is the neutral room knocked-out and fleeing avatars are
// moved to.
const RecoveryRoomID = "recovery-glade"

// ErrUnknownAvatar is returned when an avatar has no recorded position.
var ErrUnknownAvatar = errors.New("world: avatar has no recorded position")

// Locator is the room/location contract consumed by the combat engine.
type Locator interface {
	// Occupants returns the avatar IDs currently present in roomID.
	Occupants(roomID string) []string
	// RoomOf returns the room an avatar occupies, or "" if unknown.
	RoomOf(avatarID string) string
	// Move updates an avatar's recorded position. Callers treat failures
	// as best-effort: the combat transition completes regardless.
	Move(avatarID, roomID string) error
}

// Manager is an in-memory Locator. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]bool // roomID → set of avatar IDs
	position map[string]string          // avatarID → roomID
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		rooms:    make(map[string]map[string]bool),
		position: make(map[string]string),
	}
}

// Place records an avatar's initial position, replacing any prior one.
func (m *Manager) Place(avatarID, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveLocked(avatarID, roomID)
}

// Occupants returns a snapshot of avatar IDs present in roomID.
func (m *Manager) Occupants(roomID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.rooms[roomID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// RoomOf returns the room avatarID occupies, or "" if unknown.
func (m *Manager) RoomOf(avatarID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position[avatarID]
}

// Move relocates an avatar to roomID.
//
// Postcondition: RoomOf(avatarID) == roomID; the avatar is absent from
// its previous room's occupant set.
func (m *Manager) Move(avatarID, roomID string) error {
	if avatarID == "" || roomID == "" {
		return errors.New("world: avatar and room IDs must be non-empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveLocked(avatarID, roomID)
	return nil
}

// Remove drops an avatar from the world entirely.
func (m *Manager) Remove(avatarID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.position[avatarID]; ok {
		delete(m.rooms[prev], avatarID)
		if len(m.rooms[prev]) == 0 {
			delete(m.rooms, prev)
		}
	}
	delete(m.position, avatarID)
}

func (m *Manager) moveLocked(avatarID, roomID string) {
	if prev, ok := m.position[avatarID]; ok {
		delete(m.rooms[prev], avatarID)
		if len(m.rooms[prev]) == 0 {
			delete(m.rooms, prev)
		}
	}
	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[string]bool)
	}
	m.rooms[roomID][avatarID] = true
	m.position[avatarID] = roomID
}
