package core

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestCreateRoomDoesNotJoin(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	info, cerr := hub.CreateRoom(alice, "R1", "Standup")
	if cerr != nil {
		t.Fatalf("create room: %v", cerr)
	}
	if info.Code != "R1" || info.Title != "Standup" || info.Owner != "a" {
		t.Fatalf("unexpected room info: %+v", info)
	}
	if info.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
	if alice.RoomCode() != "" {
		t.Fatalf("creating must not join, got room %q", alice.RoomCode())
	}

	// The creator is not a participant: a joiner sees an empty roster.
	bob := NewSession("b")
	hub.Register(bob)
	res, cerr := hub.JoinRoom(bob, "R1", "Bob")
	if cerr != nil {
		t.Fatalf("join room: %v", cerr)
	}
	if len(res.Participants) != 0 {
		t.Fatalf("expected empty roster, got %+v", res.Participants)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	if _, cerr := hub.CreateRoom(alice, "", "no code"); cerr == nil || cerr.Code != ErrCodeInvalidRoomCode {
		t.Fatalf("expected invalid_room_code, got %v", cerr)
	}

	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.CreateRoom(alice, "R1", "dup"); cerr == nil || cerr.Code != ErrCodeRoomExists {
		t.Fatalf("expected room_exists, got %v", cerr)
	}

	// Codes are case-sensitive: r1 is a different room.
	if _, cerr := hub.CreateRoom(alice, "r1", ""); cerr != nil {
		t.Fatalf("case-sensitive create: %v", cerr)
	}
}

func TestRoomTitleDefaultsToCode(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	info, cerr := hub.CreateRoom(alice, "R1", "")
	if cerr != nil {
		t.Fatalf("create room: %v", cerr)
	}
	if info.Title != "R1" {
		t.Fatalf("expected title to default to code, got %q", info.Title)
	}
}

func TestJoinRosterAndPeerJoined(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create room: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("alice join: %v", cerr)
	}

	bob := NewSession("b")
	hub.Register(bob)
	res, cerr := hub.JoinRoom(bob, "R1", "Bob")
	if cerr != nil {
		t.Fatalf("bob join: %v", cerr)
	}

	if len(res.Participants) != 1 || res.Participants[0].ID != "a" || res.Participants[0].DisplayName != "Alice" {
		t.Fatalf("unexpected roster: %+v", res.Participants)
	}

	ev := mustEvent(t, alice.Events, EventPeerJoined)
	if ev.PeerID != "b" || ev.PeerName != "Bob" || ev.Room != "R1" {
		t.Fatalf("unexpected peer_joined: %+v", ev)
	}

	// The joiner must not receive its own join notice.
	mustNoEvent(t, bob.Events, EventPeerJoined)
}

func TestJoinUnknownRoom(t *testing.T) {
	hub := newTestHub()
	bob := NewSession("b")
	hub.Register(bob)

	if _, cerr := hub.JoinRoom(bob, "ghost", "Bob"); cerr == nil || cerr.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected room_not_found, got %v", cerr)
	}
}

func TestJoinDefaultsDisplayName(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}

	bob := NewSession("b")
	hub.Register(bob)
	res, cerr := hub.JoinRoom(bob, "R1", "Bob")
	if cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	if res.Participants[0].DisplayName != "Guest" {
		t.Fatalf("expected Guest placeholder, got %q", res.Participants[0].DisplayName)
	}
}

func TestDuplicateJoinUpdatesName(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("first join: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alicia"); cerr != nil {
		t.Fatalf("second join: %v", cerr)
	}

	bob := joinedSession(t, hub, "b", "R1", "Bob")
	_ = bob

	room, err := hub.registry.Get("R1")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	roster := room.others("b")
	if len(roster) != 1 || roster[0].DisplayName != "Alicia" {
		t.Fatalf("expected single entry Alicia, got %+v", roster)
	}
}

func TestSwitchingRoomsLeavesPrevious(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create R1: %v", cerr)
	}
	if _, cerr := hub.CreateRoom(alice, "R2", ""); cerr != nil {
		t.Fatalf("create R2: %v", cerr)
	}

	bob := joinedSession(t, hub, "b", "R1", "Bob")
	carol := joinedSession(t, hub, "c", "R1", "Carol")
	_ = carol

	if _, cerr := hub.JoinRoom(bob, "R2", "Bob"); cerr != nil {
		t.Fatalf("switch rooms: %v", cerr)
	}
	if bob.RoomCode() != "R2" {
		t.Fatalf("expected R2, got %q", bob.RoomCode())
	}

	// Carol sees Bob leave R1.
	ev := mustEvent(t, carol.Events, EventPeerLeft)
	if ev.PeerID != "b" || ev.Room != "R1" {
		t.Fatalf("unexpected peer_left: %+v", ev)
	}
}

func TestRoomDeletedWhenLastLeaves(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}

	bob := joinedSession(t, hub, "b", "R1", "Bob")
	hub.Unregister(bob)

	if _, err := hub.registry.Get("R1"); err == nil {
		t.Fatal("empty room must not be retrievable")
	}
}

func TestDisconnectCleanup(t *testing.T) {
	hub := newTestHub()
	owner := NewSession("a")
	hub.Register(owner)
	if _, cerr := hub.CreateRoom(owner, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(owner, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	hub.Unregister(owner)

	ev := mustEvent(t, bob.Events, EventPeerLeft)
	if ev.PeerID != "a" || ev.PeerName != "Alice" {
		t.Fatalf("unexpected peer_left: %+v", ev)
	}

	// Bob remains, so the room survives the owner's disconnect.
	if _, err := hub.registry.Get("R1"); err != nil {
		t.Fatalf("room should still exist: %v", err)
	}

	hub.Unregister(bob)
	if _, err := hub.registry.Get("R1"); err == nil {
		t.Fatal("room should be gone after last participant disconnects")
	}
}

func TestChatBroadcastIncludesSender(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	if cerr := hub.Chat(alice, "hello", "Alice"); cerr != nil {
		t.Fatalf("chat: %v", cerr)
	}

	for _, s := range []*Session{alice, bob} {
		ev := mustEvent(t, s.Events, EventChat)
		if ev.Chat == nil || ev.Chat.Text != "hello" || ev.Chat.FromName != "Alice" || ev.Chat.From != "a" {
			t.Fatalf("unexpected chat event for %s: %+v", s.ID, ev)
		}
	}
}

func TestChatWithoutRoomIsRejected(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	if cerr := hub.Chat(alice, "hello", "Alice"); cerr == nil || cerr.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room, got %v", cerr)
	}
}

func TestChatOrderingPerSender(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	const n = 20
	for i := 0; i < n; i++ {
		if cerr := hub.Chat(alice, fmt.Sprintf("m%d", i), "Alice"); cerr != nil {
			t.Fatalf("chat %d: %v", i, cerr)
		}
	}

	for i := 0; i < n; i++ {
		ev := mustEvent(t, bob.Events, EventChat)
		if want := fmt.Sprintf("m%d", i); ev.Chat.Text != want {
			t.Fatalf("out of order: got %q, want %q", ev.Chat.Text, want)
		}
	}
}

func TestChatHistoryDeliveredOnJoin(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}

	if cerr := hub.Chat(alice, "first", "Alice"); cerr != nil {
		t.Fatalf("chat: %v", cerr)
	}
	if cerr := hub.Chat(alice, "second", "Alice"); cerr != nil {
		t.Fatalf("chat: %v", cerr)
	}

	bob := NewSession("b")
	hub.Register(bob)
	res, cerr := hub.JoinRoom(bob, "R1", "Bob")
	if cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	if len(res.History) != 2 || res.History[0].Text != "first" || res.History[1].Text != "second" {
		t.Fatalf("unexpected history: %+v", res.History)
	}
}

func TestRelayDeliversToTarget(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	payload := json.RawMessage(`{"sdp":"v=0"}`)
	if cerr := hub.Relay(alice, SignalOffer, "b", payload); cerr != nil {
		t.Fatalf("relay: %v", cerr)
	}

	ev := mustEvent(t, bob.Events, EventSignal)
	if ev.Signal.Signal != SignalOffer || ev.Signal.From != "a" || ev.Signal.FromName != "Alice" {
		t.Fatalf("unexpected signal: %+v", ev.Signal)
	}
	if string(ev.Signal.Payload) != `{"sdp":"v=0"}` {
		t.Fatalf("payload mangled: %s", ev.Signal.Payload)
	}

	// Answers and candidates do not carry the sender's display name.
	if cerr := hub.Relay(bob, SignalAnswer, "a", payload); cerr != nil {
		t.Fatalf("relay answer: %v", cerr)
	}
	ans := mustEvent(t, alice.Events, EventSignal)
	if ans.Signal.Signal != SignalAnswer || ans.Signal.FromName != "" {
		t.Fatalf("unexpected answer signal: %+v", ans.Signal)
	}
}

func TestRelayToDeadTargetDropsSilently(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)
	if _, cerr := hub.CreateRoom(alice, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(alice, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}

	if cerr := hub.Relay(alice, SignalCandidate, "nobody", json.RawMessage(`{}`)); cerr != nil {
		t.Fatalf("expected silent drop, got %v", cerr)
	}
}

func TestRelayRequiresRoom(t *testing.T) {
	hub := newTestHub()
	alice := NewSession("a")
	hub.Register(alice)

	cerr := hub.Relay(alice, SignalOffer, "b", json.RawMessage(`{}`))
	if cerr == nil || cerr.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room, got %v", cerr)
	}
}

func TestEndRoomByOwner(t *testing.T) {
	hub := newTestHub()
	owner := NewSession("a")
	hub.Register(owner)
	if _, cerr := hub.CreateRoom(owner, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(owner, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	if cerr := hub.EndRoom(owner); cerr != nil {
		t.Fatalf("end room: %v", cerr)
	}

	for _, s := range []*Session{owner, bob} {
		ev := mustEvent(t, s.Events, EventRoomEnded)
		if ev.Room != "R1" {
			t.Fatalf("unexpected room_ended for %s: %+v", s.ID, ev)
		}
		if s.RoomCode() != "" {
			t.Fatalf("session %s should have no room after termination", s.ID)
		}
	}

	if _, err := hub.registry.Get("R1"); err == nil {
		t.Fatal("room should be gone after end-room")
	}

	// Evicted members act as if they were never in a room.
	if cerr := hub.Chat(bob, "late", "Bob"); cerr == nil || cerr.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room after eviction, got %v", cerr)
	}
}

func TestEndRoomByNonOwnerRejected(t *testing.T) {
	hub := newTestHub()
	owner := NewSession("a")
	hub.Register(owner)
	if _, cerr := hub.CreateRoom(owner, "R1", ""); cerr != nil {
		t.Fatalf("create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(owner, "R1", "Alice"); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	bob := joinedSession(t, hub, "b", "R1", "Bob")

	cerr := hub.EndRoom(bob)
	if cerr == nil || cerr.Code != ErrCodeNotAuthorized {
		t.Fatalf("expected not_authorized, got %v", cerr)
	}

	// Room unaffected and still retrievable.
	if _, err := hub.registry.Get("R1"); err != nil {
		t.Fatalf("room should still exist: %v", err)
	}
	if bob.RoomCode() != "R1" {
		t.Fatalf("bob should still be in R1, got %q", bob.RoomCode())
	}
}

func TestRequireAuthGatesCreateAndJoin(t *testing.T) {
	hub := NewHub(NewRegistry(), nil, true)
	anon := NewSession("anon")
	hub.Register(anon)

	if _, cerr := hub.CreateRoom(anon, "R1", ""); cerr == nil || cerr.Code != ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized create, got %v", cerr)
	}
	if _, cerr := hub.JoinRoom(anon, "R1", "X"); cerr == nil || cerr.Code != ErrCodeUnauthorized {
		t.Fatalf("expected unauthorized join, got %v", cerr)
	}

	verified := NewSession("v")
	verified.Authenticated = true
	hub.Register(verified)
	if _, cerr := hub.CreateRoom(verified, "R1", ""); cerr != nil {
		t.Fatalf("verified create: %v", cerr)
	}
	if _, cerr := hub.JoinRoom(verified, "R1", "V"); cerr != nil {
		t.Fatalf("verified join: %v", cerr)
	}
}
