package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "s1")
	client2 := newTestClient(hub, "s1")

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.sessions["s1"]) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(hub.sessions["s1"]))
	}

	hub.unregisterClient(client1)
	if !hub.sessions["s1"][client2] || len(hub.sessions["s1"]) != 1 {
		t.Error("client2 should still be registered alone")
	}
	if _, ok := <-client1.send; ok {
		t.Error("Unregistered client's send channel should be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.sessions["s1"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// Unregistering twice is harmless
	hub.unregisterClient(client2)
}

func TestHubBroadcastGrid(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "grid")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	grid, _ := engine.ParseLayout([]string{".#", ".."})
	hub.BroadcastGrid("grid", grid.Snapshot())
	hub.broadcastMessage(<-hub.broadcast)

	message := receive(t, client)
	if message.Event != EventGridUpdate || message.SessionID != "grid" {
		t.Errorf("Unexpected message %+v", message)
	}
	if message.Grid == nil || message.Grid.Obstacles != 1 || message.Grid.Rows[0] != ".#" {
		t.Errorf("Grid not correctly transmitted: %+v", message.Grid)
	}

	select {
	case <-other.send:
		t.Error("Client of another session must not receive the update")
	default:
	}
}

func TestHubBroadcastPath(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "path")
	hub.registerClient(client)

	hub.BroadcastPath("path", &PathUpdate{
		RunID:       "r1",
		Found:       true,
		Path:        []engine.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 1}},
		Closed:      []engine.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 1}},
		StepDelayMs: 40,
	})
	hub.BroadcastPath("path", &PathUpdate{RunID: "r2", Found: false})
	hub.broadcastMessage(<-hub.broadcast)
	hub.broadcastMessage(<-hub.broadcast)

	found := receive(t, client)
	if found.Event != EventPathFound {
		t.Errorf("Expected %s, got %s", EventPathFound, found.Event)
	}
	data, _ := json.Marshal(found.Data)
	var update PathUpdate
	json.Unmarshal(data, &update)
	if update.RunID != "r1" || len(update.Path) != 2 || update.StepDelayMs != 40 {
		t.Errorf("Unexpected path update %+v", update)
	}

	if missed := receive(t, client); missed.Event != EventNoPath {
		t.Errorf("Expected %s, got %s", EventNoPath, missed.Event)
	}
}

func TestHubBroadcastEventDropsWhenFull(t *testing.T) {
	hub := NewHub()

	for i := 0; i < broadcastBuffer+10; i++ {
		hub.BroadcastEvent("full", "tick", i)
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected a full queue of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}

	message := <-hub.broadcast
	if message.Event != "tick" || message.Data != 0 {
		t.Errorf("Expected the first event to be kept, got %+v", message)
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "x"})
	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Client with a blocked send channel should be unregistered")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Registration happens on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	grid, _ := engine.NewGrid(3, 2)
	hub.BroadcastGrid("ws-test", grid.Snapshot())
	hub.BroadcastEvent("ws-test", "custom", "hello")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, first, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(first, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Grid == nil || message.Grid.Width != 3 || message.Grid.FreeCells != 6 {
		t.Errorf("Grid not correctly received: %+v", message.Grid)
	}

	_, second, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read second message: %v", err)
	}
	json.Unmarshal(second, &message)
	if message.Event != "custom" || message.Data != "hello" {
		t.Errorf("Unexpected event %+v", message)
	}
}
