package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vovakirdan/pinlive-server/internal/auth"
	"github.com/vovakirdan/pinlive-server/internal/config"
	"github.com/vovakirdan/pinlive-server/internal/proto"
)

func (e *testEnv) syncRequest(t *testing.T, method, userID, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.ts.URL+"/api/users/"+userID, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUserSyncRequiresServiceToken(t *testing.T) {
	env := startTestServer(t)
	userToken := env.createUser(t, "u1", "alice")

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "user token", token: userToken},
		{name: "wrong token", token: "not-the-service-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.syncRequest(t, http.MethodPut, "u2", tt.token, proto.UpsertUserRequest{Username: "bob"})
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
		})
	}

	if _, err := env.store.GetUserByID(context.Background(), "u2"); err == nil {
		t.Fatalf("rejected request must not write the user")
	}
}

func TestUserSyncRejectsMissingUsername(t *testing.T) {
	env := startTestServer(t)

	resp := env.syncRequest(t, http.MethodPut, "u1", testServiceToken, map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUserSyncUpsertEnablesHandshake(t *testing.T) {
	env := startTestServer(t)

	token, err := auth.GenerateToken(env.jwtConfig, "u9", "zoe")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if status := handshakeStatus(t, env, token); status != http.StatusUnauthorized {
		t.Fatalf("unknown user should be refused, got %d", status)
	}

	resp := env.syncRequest(t, http.MethodPut, "u9", testServiceToken, proto.UpsertUserRequest{Username: "zoe"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var user proto.UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID != "u9" || user.Username != "zoe" {
		t.Fatalf("unexpected user %+v", user)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	env.dial(ctx, t, "u9", token)
	if !env.hub.IsOnline("u9") {
		t.Fatalf("expected synced user to be online")
	}
}

func TestUserSyncDeleteRefusesNextHandshake(t *testing.T) {
	env := startTestServerWith(t, func(cfg *config.Config) { cfg.IdentityCacheTTL = time.Minute })

	resp := env.syncRequest(t, http.MethodPut, "u1", testServiceToken, proto.UpsertUserRequest{Username: "alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert: %d", resp.StatusCode)
	}
	token, err := auth.GenerateToken(env.jwtConfig, "u1", "alice")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// The first handshake puts the identity in the cache.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	env.dial(ctx, t, "u1", token)

	resp = env.syncRequest(t, http.MethodDelete, "u1", testServiceToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	status, reason := handshake(t, env, token)
	if status != http.StatusUnauthorized || reason != proto.ReasonUserNotFound {
		t.Fatalf("expected 401 %q, got %d %q", proto.ReasonUserNotFound, status, reason)
	}
}

func handshakeStatus(t *testing.T, env *testEnv, token string) int {
	t.Helper()
	status, _ := handshake(t, env, token)
	return status
}

// handshake performs the authentication step of /ws without upgrading.
func handshake(t *testing.T, env *testEnv, token string) (int, string) {
	t.Helper()

	resp, err := env.ts.Client().Get(env.ts.URL + "/ws?token=" + token)
	if err != nil {
		t.Fatalf("handshake request: %v", err)
	}
	defer resp.Body.Close()

	var body proto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body.Error
}
