package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattcreaser/typerace/go/internal/game"
	"github.com/mattcreaser/typerace/go/internal/game/events"
)

type stubPicker struct{}

func (stubPicker) Next() (string, error) { return "lantern", nil }

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, word, name string, elapsedSeconds float64) {}

func startTestServer(t *testing.T) (*httptest.Server, *ConnectionManager) {
	t.Helper()

	cm := NewConnectionManager(DefaultConnectionConfig())
	engine := game.NewEngine(game.DefaultEngineConfig(), stubPicker{}, noopRecorder{}, cm, clockwork.NewRealClock())

	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(cm, engine).RegisterRoutes(mux)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server, cm
}

func dialGame(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	msg, err := json.Marshal(map[string]any{"type": eventType, "data": json.RawMessage(data)})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event events.Event
	require.NoError(t, json.Unmarshal(data, &event))
	return &event
}

// readUntil discards events until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType events.EventType) *events.Event {
	t.Helper()
	for range 10 {
		event := readEvent(t, conn)
		if event.Type == eventType {
			return event
		}
	}
	t.Fatalf("no %s event received", eventType)
	return nil
}

func TestJoinBroadcastsPlayerList(t *testing.T) {
	server, cm := startTestServer(t)

	conn := dialGame(t, server)
	send(t, conn, "join", map[string]string{"name": "Ann"})

	event := readUntil(t, conn, events.EventTypePlayerList)
	var payload events.PlayerListPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "Ann", payload[0].Name)
	assert.Equal(t, 0, payload[0].Score)

	assert.Equal(t, 1, cm.ConnectionCount())
}

func TestSecondJoinStartsRound(t *testing.T) {
	server, _ := startTestServer(t)

	ann := dialGame(t, server)
	send(t, ann, "join", map[string]string{"name": "Ann"})
	readUntil(t, ann, events.EventTypePlayerList)

	bo := dialGame(t, server)
	send(t, bo, "join", map[string]string{"name": "Bo"})

	event := readUntil(t, bo, events.EventTypeRoundStarted)
	var payload events.RoundStartedPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, "lantern", payload.Word)

	// The already-connected client sees the same round start.
	readUntil(t, ann, events.EventTypeRoundStarted)
}

func TestWordDoneFromBothPlayersEndsRound(t *testing.T) {
	server, _ := startTestServer(t)

	ann := dialGame(t, server)
	send(t, ann, "join", map[string]string{"name": "Ann"})
	bo := dialGame(t, server)
	send(t, bo, "join", map[string]string{"name": "Bo"})
	readUntil(t, ann, events.EventTypeRoundStarted)

	send(t, ann, "wordDone", map[string]float64{"elapsedSeconds": 4.1})
	send(t, bo, "wordDone", map[string]float64{"elapsedSeconds": 6.0})

	event := readUntil(t, ann, events.EventTypeRoundEnded)
	var payload events.RoundEndedPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, "lantern", payload.Word)
	require.Len(t, payload.Scores, 2)
	assert.Equal(t, "Ann", payload.Scores[0].Player)
	assert.Equal(t, 4.1, payload.Scores[0].ElapsedSeconds)
}

func TestDisconnectRemovesPlayerFromRoster(t *testing.T) {
	server, _ := startTestServer(t)

	ann := dialGame(t, server)
	send(t, ann, "join", map[string]string{"name": "Ann"})
	readUntil(t, ann, events.EventTypePlayerList)

	bo := dialGame(t, server)
	send(t, bo, "join", map[string]string{"name": "Bo"})
	readUntil(t, ann, events.EventTypeRoundStarted)

	require.NoError(t, bo.Close())

	// Ann eventually sees a roster with only herself on it.
	for range 10 {
		event := readUntil(t, ann, events.EventTypePlayerList)
		var payload events.PlayerListPayload
		require.NoError(t, json.Unmarshal(event.Data, &payload))
		if len(payload) == 1 {
			assert.Equal(t, "Ann", payload[0].Name)
			return
		}
	}
	t.Fatal("roster never shrank after disconnect")
}

func TestMalformedClientEventIsIgnored(t *testing.T) {
	server, cm := startTestServer(t)

	conn := dialGame(t, server)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	send(t, conn, "join", map[string]string{"name": "Ann"})
	event := readUntil(t, conn, events.EventTypePlayerList)
	assert.Equal(t, events.EventTypePlayerList, event.Type)
	assert.Equal(t, 1, cm.ConnectionCount())
}

func TestBroadcastDuringDisconnectDoesNotPanic(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())

	const clients = 500
	conns := make([]*Connection, 0, clients)
	for i := 0; i < clients; i++ {
		conn := &Connection{
			ID:      fmt.Sprintf("conn-%d", i),
			Send:    make(chan []byte, 256),
			Manager: cm,
		}
		cm.registerConnection(conn)
		conns = append(conns, conn)
		go func() {
			for range conn.Send {
			}
		}()
	}

	event, err := events.New(events.EventTypePlayerList, events.PlayerListPayload{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, conn := range conns {
			cm.unregisterConnection(conn)
		}
	}()

	for i := 0; i < 100; i++ {
		cm.handleBroadcast(event)
	}
	wg.Wait()

	assert.Zero(t, cm.ConnectionCount())
}
