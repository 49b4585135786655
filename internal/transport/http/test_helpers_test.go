package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pinlive-server/internal/auth"
	"github.com/vovakirdan/pinlive-server/internal/config"
	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/metrics"
	"github.com/vovakirdan/pinlive-server/internal/proto"
	"github.com/vovakirdan/pinlive-server/internal/store/sqlite"
)

type testEnv struct {
	ts        *httptest.Server
	hub       *core.Hub
	store     *sqlite.SQLiteStore
	jwtConfig *auth.JWTConfig
}

const testServiceToken = "test-service-token"

func startTestServer(t *testing.T) *testEnv {
	t.Helper()
	return startTestServerWith(t, nil)
}

// startTestServerWith lets a test adjust the config before the server is built.
func startTestServerWith(t *testing.T, configure func(*config.Config)) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.ServiceToken = testServiceToken
	cfg.PingInterval = 0
	cfg.WriteTimeout = time.Second
	if configure != nil {
		configure(&cfg)
	}
	verifier := auth.NewVerifier(st, jwtConfig, cfg.IdentityCacheTTL)

	logger := zerolog.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hub := core.NewHub(core.WithObserver(m), core.WithLogger(&logger))
	m.TrackPresence(hub)

	server := NewServer(hub, verifier, st, reg, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub, store: st, jwtConfig: jwtConfig}
}

// createUser stores the user and returns a token for it.
func (e *testEnv) createUser(t *testing.T, id, username string) string {
	t.Helper()

	if _, err := e.store.UpsertUser(context.Background(), id, username); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	token, err := auth.GenerateToken(e.jwtConfig, id, username)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (e *testEnv) wsURL(token string) string {
	u := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

// dial connects with the token and waits until the hub has registered the
// connection.
func (e *testEnv) dial(ctx context.Context, t *testing.T, userID, token string) *websocket.Conn {
	t.Helper()

	before := e.hub.ConnectionCount(userID)
	conn, _, err := websocket.Dial(ctx, e.wsURL(token), nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	waitFor(t, func() bool { return e.hub.ConnectionCount(userID) > before })
	return conn
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
	t.Fatalf("condition not met before deadline")
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", event, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

type rawOutbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// mustOutbound reads frames until one with the given event name arrives.
func mustOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn, event string, v any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("expected %s: %v", event, err)
		}
		if out.Event != event {
			continue
		}
		if err := json.Unmarshal(out.Data, v); err != nil {
			t.Fatalf("unmarshal %s: %v", event, err)
		}
		return
	}
}

// createGhostToken returns a valid token for a user the store does not know.
func (e *testEnv) createGhostToken() (string, error) {
	return auth.GenerateToken(e.jwtConfig, "ghost", "ghost")
}

func ptr[T any](v T) *T { return &v }
