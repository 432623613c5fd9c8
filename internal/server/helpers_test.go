package server_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/duochat/internal/auth"
	"github.com/Tyrowin/duochat/internal/realtime"
	"github.com/Tyrowin/duochat/internal/server"
	"github.com/Tyrowin/duochat/internal/store"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:8000"

var testLog = logs.GetLoggerFromLevel(slog.LevelDebug)

type testEnv struct {
	http  *httptest.Server
	app   *server.Server
	wsURL string
}

// newTestEnv serves a fresh server over a Badger store in a temp dir.
func newTestEnv(t *testing.T, mutate func(*server.Config)) *testEnv {
	t.Helper()
	cfg := server.Config{
		AllowedOrigins: testOrigin,
		JWTSecretKey:   "test-secret",
		RateLimitBurst: 100,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	cfg = server.SanitizeConfig(cfg)

	gateway, err := store.OpenBadger(t.TempDir(), testLog)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gateway.Close() })

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.AuthTokenDuration)
	require.NoError(t, err)

	app := server.New(testLog, cfg, gateway, tokens)
	app.Start()
	t.Cleanup(func() { _ = app.Shutdown(2 * time.Second) })

	ts := httptest.NewServer(app.Routes())
	t.Cleanup(ts.Close)

	return &testEnv{
		http:  ts,
		app:   app,
		wsURL: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
	}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("Origin", testOrigin)
	conn, resp, err := websocket.DefaultDialer.Dial(e.wsURL, header)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.http.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.http.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) register(t *testing.T, name, email string) realtime.Profile {
	t.Helper()
	resp := e.post(t, "/api/register", auth.RegisterRequest{FullName: name, Email: email, Password: "secret-password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile realtime.Profile
	decodeBody(t, resp, &profile)
	return profile
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

// readEvent skips frames until one named event arrives.
func readEvent(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Event == event {
			return f
		}
	}
}

// waitPresence reads presence snapshots until one lists exactly userIDs.
func waitPresence(t *testing.T, conn *websocket.Conn, userIDs ...string) []realtime.PresenceEntry {
	t.Helper()
	want := slices.Clone(userIDs)
	slices.Sort(want)
	for {
		f := readEvent(t, conn, realtime.EventGetUsers)
		var entries []realtime.PresenceEntry
		require.NoError(t, json.Unmarshal(f.Data, &entries))
		got := make([]string, 0, len(entries))
		for _, e := range entries {
			got = append(got, e.UserID)
		}
		if slices.Equal(want, got) {
			return entries
		}
	}
}
