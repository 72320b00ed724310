package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle_backend/internal/auth"
	chat "huddle_backend/internal/services/chat"
)

type presenceCall struct {
	UserID string
	Online bool
}

type fakePresence struct {
	calls []presenceCall
}

func (p *fakePresence) SetOnline(userID string, online bool) error {
	p.calls = append(p.calls, presenceCall{UserID: userID, Online: online})
	return nil
}

func testClient(m *Manager, userID string) *Client {
	return newClient(m, nil, &auth.Identity{ID: userID, Name: userID}, nil)
}

func drain(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case envelope := <-c.send:
		return envelope
	default:
		t.Fatal("expected an envelope, send buffer empty")
		return Envelope{}
	}
}

// flush discards pending frames, typically the userStatus announcements
// emitted while wiring clients up.
func flush(clients ...*Client) {
	for _, c := range clients {
		for len(c.send) > 0 {
			<-c.send
		}
	}
}

func TestHomeRoomReachesAllUserConnections(t *testing.T) {
	m := NewManager(&fakePresence{})
	tab1 := testClient(m, "alice")
	tab2 := testClient(m, "alice")
	other := testClient(m, "bob")
	m.addClient(tab1)
	m.addClient(tab2)
	m.addClient(other)
	flush(tab1, tab2, other)

	m.SendToUser("alice", "notification", "payload")

	assert.Equal(t, "notification", drain(t, tab1).Event)
	assert.Equal(t, "notification", drain(t, tab2).Event)
	assert.Empty(t, other.send)
}

func TestViewingRoomBroadcastOnlyReachesJoined(t *testing.T) {
	m := NewManager(&fakePresence{})
	viewer := testClient(m, "alice")
	bystander := testClient(m, "bob")
	m.addClient(viewer)
	m.addClient(bystander)
	flush(viewer, bystander)

	m.JoinRoom(viewer, "ch1")
	m.BroadcastToChannel("ch1", "receiveMessage", "payload")

	envelope := drain(t, viewer)
	assert.Equal(t, "receiveMessage", envelope.Event)
	assert.Empty(t, bystander.send)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	m := NewManager(&fakePresence{})
	viewer := testClient(m, "alice")
	m.addClient(viewer)
	flush(viewer)

	m.JoinRoom(viewer, "ch1")
	m.LeaveRoom(viewer, "ch1")
	m.BroadcastToChannel("ch1", "receiveMessage", "payload")

	assert.Empty(t, viewer.send)
}

func TestForceLeaveEvictsEveryConnectionOfUser(t *testing.T) {
	m := NewManager(&fakePresence{})
	tab1 := testClient(m, "alice")
	tab2 := testClient(m, "alice")
	viewer := testClient(m, "bob")
	m.addClient(tab1)
	m.addClient(tab2)
	m.addClient(viewer)
	flush(tab1, tab2, viewer)

	m.JoinRoom(tab1, "ch1")
	m.JoinRoom(tab2, "ch1")
	m.JoinRoom(viewer, "ch1")

	m.ForceLeaveChannel("alice", "ch1")
	m.BroadcastToChannel("ch1", "receiveMessage", "payload")

	assert.Empty(t, tab1.send)
	assert.Empty(t, tab2.send)
	assert.Equal(t, "receiveMessage", drain(t, viewer).Event)
}

func TestDisconnectRemovesFromAllRooms(t *testing.T) {
	m := NewManager(&fakePresence{})
	client := testClient(m, "alice")
	m.addClient(client)
	m.JoinRoom(client, "ch1")
	m.JoinRoom(client, "ch2")

	m.removeClient(client)

	assert.Empty(t, m.rooms)
	assert.Empty(t, m.userClients)
}

func TestPresenceTransitionsOnFirstAndLastConnection(t *testing.T) {
	presence := &fakePresence{}
	m := NewManager(presence)
	tab1 := testClient(m, "alice")
	tab2 := testClient(m, "alice")

	m.addClient(tab1)
	m.addClient(tab2)
	require.Len(t, presence.calls, 1)
	assert.Equal(t, presenceCall{UserID: "alice", Online: true}, presence.calls[0])

	m.removeClient(tab1)
	require.Len(t, presence.calls, 1)

	m.removeClient(tab2)
	require.Len(t, presence.calls, 2)
	assert.Equal(t, presenceCall{UserID: "alice", Online: false}, presence.calls[1])
}

func TestPresenceChangeIsAnnounced(t *testing.T) {
	m := NewManager(&fakePresence{})
	watcher := testClient(m, "alice")
	m.addClient(watcher)

	joiner := testClient(m, "bob")
	m.addClient(joiner)

	envelope := drain(t, watcher)
	assert.Equal(t, chat.EventUserStatus, envelope.Event)
}
