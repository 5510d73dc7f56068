package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/hitoshi/storefront/internal/model"
)

func TestObtainToken_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathTokenAuth {
			t.Errorf("request = %s %s, want POST %s", r.Method, r.URL.Path, PathTokenAuth)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("トークン取得リクエストにAuthorizationヘッダーを付与してはならない")
		}
		b, _ := io.ReadAll(r.Body)
		var creds model.Credentials
		_ = json.Unmarshal(b, &creds)
		if creds.Username != "alice" || creds.Password != "pw1" {
			t.Errorf("credentials = %+v", creds)
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-alice"})
	})

	token, err := c.ObtainToken(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("ObtainToken がエラーを返した: %v", err)
	}
	if token != "tok-alice" {
		t.Errorf("token = %q, want %q", token, "tok-alice")
	}
}

func TestObtainToken_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"non_field_errors": []string{"Unable to log in with provided credentials."},
		})
	})

	token, err := c.ObtainToken(context.Background(), "alice", "wrong")
	if model.KindOf(err) != model.KindRequestFailed {
		t.Fatalf("err = %v, want RequestFailed", err)
	}
	if token != "" {
		t.Errorf("token = %q, want 空", token)
	}
	if model.MessageOf(err) != "Unable to log in with provided credentials." {
		t.Errorf("message = %q", model.MessageOf(err))
	}
}

func TestObtainToken_FailureWithoutMessage_UsesLoginFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.ObtainToken(context.Background(), "alice", "x")
	if model.MessageOf(err) != "Login failed" {
		t.Errorf("message = %q, want %q", model.MessageOf(err), "Login failed")
	}
}

func TestObtainToken_2xxWithoutToken_IsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	token, err := c.ObtainToken(context.Background(), "alice", "pw1")
	if err == nil {
		t.Fatal("トークンのない2xxは失敗として扱うべき")
	}
	if token != "" {
		t.Errorf("token = %q, want 空", token)
	}
}

func TestTokenAuthAdapter_NormalizesToEnvelope(t *testing.T) {
	env, err := TokenAuthAdapter(http.StatusOK, []byte(`{"token":"xyz"}`))
	if err != nil {
		t.Fatalf("TokenAuthAdapter がエラーを返した: %v", err)
	}
	if env.Success == nil || !*env.Success {
		t.Fatal("Success = false, want true")
	}
	var tr model.TokenResponse
	if err := json.Unmarshal(env.Data, &tr); err != nil || tr.Token != "xyz" {
		t.Errorf("data = %s, want token xyz", env.Data)
	}
}

func TestTokenAuthAdapter_MalformedBody(t *testing.T) {
	if _, err := TokenAuthAdapter(http.StatusOK, []byte("<html>")); err == nil {
		t.Error("不正なJSONではエラーを返すべき")
	}
}
