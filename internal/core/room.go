package core

import (
	"sync"
	"time"
)

// historyLimit caps the in-memory chat backlog kept per room.
const historyLimit = 100

// Participant is a roster entry as seen by other room members.
type Participant struct {
	ID          string
	DisplayName string
}

// Room groups sessions exchanging chat and signaling messages under one code.
// All participant state is guarded by the room's own mutex; rooms on distinct
// codes never contend.
type Room struct {
	Code      string
	Title     string
	Owner     string
	CreatedAt time.Time

	mu           sync.Mutex
	closed       bool
	participants []roomMember // insertion order preserved for rosters
	history      []ChatMessage
}

type roomMember struct {
	sess *Session
	name string
}

// NewRoom constructs a room with no participants. Title falls back to code.
func NewRoom(code, title, owner string) *Room {
	if title == "" {
		title = code
	}
	return &Room{
		Code:      code,
		Title:     title,
		Owner:     owner,
		CreatedAt: time.Now(),
	}
}

// add inserts the session or, on a duplicate join, updates its display name.
// Returns false if the room has already been deleted; the caller must treat
// that as room-not-found and retry the registry lookup.
func (r *Room) add(s *Session, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	for i := range r.participants {
		if r.participants[i].sess.ID == s.ID {
			r.participants[i].name = name
			return true
		}
	}
	r.participants = append(r.participants, roomMember{sess: s, name: name})
	return true
}

// remove deletes the session if present. It reports whether the session was
// a member and whether this removal emptied (and therefore closed) the room.
// Closing under the same lock section keeps delete-on-empty atomic with the
// removal that triggered it.
func (r *Room) remove(id string) (removed, closedNow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.participants {
		if r.participants[i].sess.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			removed = true
			break
		}
	}
	if removed && len(r.participants) == 0 && !r.closed {
		r.closed = true
		closedNow = true
	}
	return removed, closedNow
}

// close marks the room deleted and returns the evicted sessions.
func (r *Room) close() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	evicted := make([]*Session, 0, len(r.participants))
	for _, m := range r.participants {
		evicted = append(evicted, m.sess)
	}
	r.participants = nil
	return evicted
}

// others returns the roster excluding the given session, in join order.
func (r *Room) others(excludeID string) []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Participant, 0, len(r.participants))
	for _, m := range r.participants {
		if m.sess.ID == excludeID {
			continue
		}
		out = append(out, Participant{ID: m.sess.ID, DisplayName: m.name})
	}
	return out
}

// broadcast fans an event out to the current participant set. The receiver
// list is snapshotted under the lock; channel sends happen outside it so a
// slow consumer never stalls room mutations.
func (r *Room) broadcast(ev *Event, excludeID string) {
	r.mu.Lock()
	targets := make([]*Session, 0, len(r.participants))
	for _, m := range r.participants {
		if m.sess.ID == excludeID {
			continue
		}
		targets = append(targets, m.sess)
	}
	r.mu.Unlock()

	for _, s := range targets {
		s.send(ev)
	}
}

// appendHistory records a chat message, trimming to the history cap.
func (r *Room) appendHistory(msg ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, msg)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
}

// historySnapshot copies the chat backlog for a joining session.
func (r *Room) historySnapshot() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChatMessage, len(r.history))
	copy(out, r.history)
	return out
}
