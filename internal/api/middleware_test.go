package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"forkful/pkg/auth"
)

// newTestAPI builds an API whose storage handles are never dereferenced by
// the paths under test.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	tokens, err := auth.NewTokens("test-signing-key", auth.AlgorithmHS256, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}

	a, err := New(&Store{DB: &pgxpool.Pool{}, ORM: &gorm.DB{}}, tokens, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "missing header", header: "", wantOK: false},
		{name: "no scheme", header: "sometoken", wantOK: false},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantOK: false},
		{name: "bearer empty", header: "Bearer ", wantOK: false},
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(r)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("bearerToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRequireUserRejectsWithoutStorageAccess(t *testing.T) {
	a := newTestAPI(t)

	handler, err := a.Routes()
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "no token"},
		{name: "malformed header", header: "Token abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "token from another key", header: "Bearer " + tokenSignedWith(t, "other-key")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Fatalf("WWW-Authenticate = %q, want Bearer", got)
			}
		})
	}
}

func tokenSignedWith(t *testing.T, secret string) string {
	t.Helper()
	tokens, err := auth.NewTokens(secret, auth.AlgorithmHS256, time.Minute)
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}
	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestCurrentUserAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := currentUser(req.Context()); ok {
		t.Fatal("currentUser() reported a user on an empty context")
	}
}
