package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/estate-hub/internal/common/config"
	commonhttp "github.com/AlibekovAA/estate-hub/internal/common/http"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/session"
	"github.com/AlibekovAA/estate-hub/internal/presence"
	userdomain "github.com/AlibekovAA/estate-hub/internal/user/domain"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

type stubUsers struct{}

func (stubUsers) FindByID(_ context.Context, id userdomain.ID) (userdomain.User, error) {
	if id == "ghost" {
		return userdomain.User{}, errors.New("not found")
	}
	return userdomain.User{ID: id, Username: "name-" + string(id)}, nil
}

type counterIDs struct {
	n atomic.Int64
}

func (c *counterIDs) NewID() string {
	return fmt.Sprintf("conn-%d", c.n.Add(1))
}

type testEnv struct {
	server   *httptest.Server
	codec    *session.Codec
	registry *presence.MemoryRegistry
	hub      *Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, _ := logger.New("", "test", "info")
	codec := session.NewCodec(testSecret, nil)
	registry := presence.NewMemoryRegistry(0, nil)

	hub := NewHub(log)
	tracker := presence.NewTracker(presence.TrackerDeps{
		Registry: registry,
		Verifier: codec,
		Users:    stubUsers{},
		Log:      log,
	}, true)
	tracker.SetBroadcaster(hub)
	hub.UsePresence(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.WebSocketConfig{
		WriteWait:   time.Second,
		PongWait:    5 * time.Second,
		PingPeriod:  4 * time.Second,
		MaxMsgSize:  1024,
		SendBufSize: 16,
	}
	mux := http.NewServeMux()
	NewHandler(hub, tracker, &counterIDs{}, "http://localhost:5173", cfg, time.Second, log).
		Routes(mux, commonhttp.NewStrictRateLimiter())

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return &testEnv{server: server, codec: codec, registry: registry, hub: hub}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := e.codec.Issue(session.Identity{UserID: userID}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) dial(t *testing.T, token string) *gorillaWS.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gorillaWS.Conn) (MessageType, string) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	var payload string
	_ = json.Unmarshal(msg.Payload, &payload)
	return msg.Type, payload
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHub_ConnectBroadcastsToEveryone(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t, env.token(t, "alice"))
	if typ, payload := readMessage(t, alice); typ != TypeUserConnected || payload != "name-alice" {
		t.Fatalf("expected own userConnected, got %s %q", typ, payload)
	}

	bob := env.dial(t, env.token(t, "bob"))
	if typ, payload := readMessage(t, alice); typ != TypeUserConnected || payload != "name-bob" {
		t.Fatalf("expected alice to see bob, got %s %q", typ, payload)
	}
	readMessage(t, bob)

	if n, _ := env.registry.Count(context.Background()); n != 2 {
		t.Errorf("expected two presence entries, got %d", n)
	}
}

func TestHub_DisconnectBroadcastsAndRemoves(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t, env.token(t, "alice"))
	readMessage(t, alice)

	bob := env.dial(t, env.token(t, "bob"))
	readMessage(t, alice)
	bob.Close()

	if typ, payload := readMessage(t, alice); typ != TypeUserDisconnected || payload != "name-bob" {
		t.Fatalf("expected userDisconnected for bob, got %s %q", typ, payload)
	}
	if _, ok, _ := env.registry.Get(context.Background(), "bob"); ok {
		t.Error("expected bob's entry to be removed")
	}
}

func TestHub_InvalidTokenIsNotTracked(t *testing.T) {
	env := newTestEnv(t)

	env.dial(t, "not-a-jwt")
	env.dial(t, "")
	waitFor(t, func() bool { return env.hub.ClientCount() == 2 })

	if n, _ := env.registry.Count(context.Background()); n != 0 {
		t.Errorf("expected no presence entries, got %d", n)
	}

	alice := env.dial(t, env.token(t, "alice"))
	if typ, _ := readMessage(t, alice); typ != TypeUserConnected {
		t.Errorf("expected only valid connection to broadcast, got %s", typ)
	}
}

func TestHub_ReconnectKeepsNewestEntry(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "alice")

	first := env.dial(t, token)
	readMessage(t, first)
	second := env.dial(t, token)
	readMessage(t, second)

	first.Close()
	waitFor(t, func() bool { return env.hub.ClientCount() == 1 })

	e, ok, _ := env.registry.Get(context.Background(), "alice")
	if !ok || e.Handle != "conn-2" {
		t.Errorf("expected newest connection to own the entry, got %+v ok=%v", e, ok)
	}
}

func TestPresenceEndpoint(t *testing.T) {
	env := newTestEnv(t)

	alice := env.dial(t, env.token(t, "alice"))
	readMessage(t, alice)

	resp, err := http.Get(env.server.URL + "/api/presence/alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body presenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Online || body.UserID != "alice" || body.LastSeen == nil {
		t.Errorf("unexpected presence %+v", body)
	}

	resp2, err := http.Get(env.server.URL + "/api/presence/nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	var offline presenceResponse
	_ = json.NewDecoder(resp2.Body).Decode(&offline)
	if offline.Online {
		t.Error("expected unknown user to be offline")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	<-stopped

	if hub.Register(&Client{handle: "late", send: make(chan []byte, 1)}) {
		t.Error("expected register to fail after shutdown")
	}
}
