package ws

import (
	"sync"

	"huddle_backend/internal/logger"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/internal/services/dto"
)

// Envelope is the outgoing wire frame: every event a client receives is
// {"event": ..., "data": ...}.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PresenceStore persists online flags as connections come and go.
type PresenceStore interface {
	SetOnline(userID string, online bool) error
}

// Manager tracks live connections and the two room layers built on them.
// Every connection sits in its user's home room for the whole session;
// viewing rooms are joined and left as the user navigates channels. The
// chat dispatcher delivers through these rooms via the Broadcaster
// methods below.
type Manager struct {
	mu sync.RWMutex

	// home rooms: all of a user's connections, keyed by user id
	userClients map[string]map[*Client]struct{}

	// viewing rooms: connections currently looking at a channel
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	presence PresenceStore
}

func NewManager(presence PresenceStore) *Manager {
	return &Manager{
		userClients: make(map[string]map[*Client]struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		presence:    presence,
	}
}

// Run processes connection lifecycle events. Start it once, before the
// first upgrade.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		}
	}
}

// addClient puts the connection into its home room. The user's first
// connection flips them online and announces the transition.
func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	set, ok := m.userClients[client.UserID()]
	if !ok {
		set = make(map[*Client]struct{})
		m.userClients[client.UserID()] = set
	}
	firstConnection := len(set) == 0
	set[client] = struct{}{}
	m.mu.Unlock()

	logger.Debug("ws client connected", "user_id", client.UserID(), "first", firstConnection)

	if firstConnection {
		m.setPresence(client.UserID(), true)
	}
}

// removeClient drops the connection from every room. The user's last
// connection flips them offline.
func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	set, ok := m.userClients[client.UserID()]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, registered := set[client]; !registered {
		m.mu.Unlock()
		return
	}

	delete(set, client)
	lastConnection := len(set) == 0
	if lastConnection {
		delete(m.userClients, client.UserID())
	}
	for channelID, room := range m.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(m.rooms, channelID)
		}
	}
	close(client.send)
	m.mu.Unlock()

	logger.Debug("ws client disconnected", "user_id", client.UserID(), "last", lastConnection)

	if lastConnection {
		m.setPresence(client.UserID(), false)
	}
}

// JoinRoom subscribes a connection to a channel's viewing room.
func (m *Manager) JoinRoom(client *Client, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[channelID]
	if !ok {
		room = make(map[*Client]struct{})
		m.rooms[channelID] = room
	}
	room[client] = struct{}{}
}

// LeaveRoom unsubscribes one connection from a viewing room.
func (m *Manager) LeaveRoom(client *Client, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropFromRoom(client, channelID)
}

// ForceLeaveChannel evicts every connection of a user from a channel's
// viewing room. Membership revocation calls this so a removed user's
// open tabs stop receiving that channel's broadcasts immediately.
func (m *Manager) ForceLeaveChannel(userID, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.userClients[userID] {
		m.dropFromRoom(client, channelID)
	}
}

func (m *Manager) dropFromRoom(client *Client, channelID string) {
	room, ok := m.rooms[channelID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(m.rooms, channelID)
	}
}

// BroadcastToChannel emits an event to every connection viewing the
// channel. Delivery happens under the read lock: a client's send channel
// is only closed under the write lock, so sends here can never hit a
// closed channel.
func (m *Manager) BroadcastToChannel(channelID, event string, payload any) {
	envelope := Envelope{Event: event, Data: payload}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.rooms[channelID] {
		m.deliver(client, envelope)
	}
}

// SendToUser emits an event to every connection in the user's home room.
func (m *Manager) SendToUser(userID, event string, payload any) {
	envelope := Envelope{Event: event, Data: payload}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.userClients[userID] {
		m.deliver(client, envelope)
	}
}

// sendToClient targets one connection, skipping it if it already
// unregistered.
func (m *Manager) sendToClient(client *Client, envelope Envelope) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.userClients[client.UserID()][client]; !ok {
		return
	}
	m.deliver(client, envelope)
}

// deliver hands the envelope to the client's writer without blocking. A
// full send buffer means the consumer stopped draining; the connection
// is cut rather than letting one slow reader stall the fan-out path.
// Callers hold at least the read lock.
func (m *Manager) deliver(client *Client, envelope Envelope) {
	select {
	case client.send <- envelope:
	default:
		logger.Warn("dropping slow ws consumer", "user_id", client.UserID())
		go func() { m.unregister <- client }()
	}
}

// setPresence records the transition and announces it to everyone online.
func (m *Manager) setPresence(userID string, online bool) {
	if err := m.presence.SetOnline(userID, online); err != nil {
		logger.WithError(err).Warn("failed to persist presence", "user_id", userID)
	}

	envelope := Envelope{Event: chat.EventUserStatus, Data: &dto.UserStatusPayload{
		UserID:   userID,
		IsOnline: online,
	}}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, set := range m.userClients {
		for client := range set {
			m.deliver(client, envelope)
		}
	}
}
