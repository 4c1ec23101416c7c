package core

import "sync"

// Registry owns the room code -> room mapping. It is constructed once per
// process and injected into the hub; there is no package-level room table.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create registers a new room under code. The existence check and the
// insert share one critical section, so concurrent creates with the same
// code yield exactly one winner.
func (reg *Registry) Create(code, title, owner string) (*Room, error) {
	if code == "" {
		return nil, ErrInvalidRoomCode
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.rooms[code]; exists {
		return nil, ErrRoomExists
	}
	room := NewRoom(code, title, owner)
	reg.rooms[code] = room
	return room, nil
}

// Get looks up a room by code.
func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Delete removes the room registered under code, but only if it is still
// the given instance. Deleting an unknown or already-replaced room is a
// no-op: a new room may have been created under the same code since the
// caller decided to delete.
func (reg *Registry) Delete(code string, room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if current, ok := reg.rooms[code]; ok && current == room {
		delete(reg.rooms, code)
	}
}

// Len returns the number of registered rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
