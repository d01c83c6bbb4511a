package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"dispute-arbiter/internal/arbitration"
)

const (
	clientQueueSize = 16
	writeTimeout    = 10 * time.Second
)

// VerdictEvent describes websocket payloads emitted after each arbitration.
type VerdictEvent struct {
	Type      string               `json:"type"`
	Verdict   *arbitration.Verdict `json:"verdict,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// wsClient owns a websocket connection and the queue its writer drains.
type wsClient struct {
	conn  *websocket.Conn
	send  chan VerdictEvent
	close sync.Once
}

// VerdictNotifier keeps track of active websocket clients and broadcasts verdicts.
// Broadcast never blocks on a client: each one has its own queue and writer goroutine,
// and a client whose queue is full is dropped.
type VerdictNotifier struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	last    *VerdictEvent
}

// NewVerdictNotifier constructs a notifier instance.
func NewVerdictNotifier() *VerdictNotifier {
	return &VerdictNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the latest verdict to it.
func (n *VerdictNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn, send: make(chan VerdictEvent, clientQueueSize)}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	if n.last != nil {
		replay := *n.last
		replay.Type = "latest"
		client.send <- replay
	}
	n.mu.Unlock()

	go n.writeLoop(client)
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *VerdictNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	client.shutdown()
}

// Broadcast queues the supplied event for every registered websocket client.
func (n *VerdictNotifier) Broadcast(event VerdictEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	if event.Verdict != nil {
		snapshot := event
		n.last = &snapshot
	}
	for client := range n.clients {
		select {
		case client.send <- event:
		default:
			logrus.WithField("remote", client.conn.RemoteAddr().String()).Warn("verdict websocket too slow, dropping client")
			delete(n.clients, client)
			client.shutdown()
		}
	}
}

// Clients reports the number of connected websocket clients.
func (n *VerdictNotifier) Clients() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

func (n *VerdictNotifier) writeLoop(client *wsClient) {
	for event := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.conn.WriteJSON(event); err != nil {
			n.Unregister(client)
			return
		}
	}
}

// shutdown closes the queue and the socket once; the writer exits when the queue drains.
func (c *wsClient) shutdown() {
	c.close.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}
