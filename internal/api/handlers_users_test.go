package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "empty", email: "", wantErr: true},
		{name: "no at sign", email: "cook.example.com", wantErr: true},
		{name: "no domain", email: "cook@", wantErr: true},
		{name: "display name", email: "Cook <cook@example.com>", wantErr: true},
		{name: "plain address", email: "cook@example.com", wantErr: false},
		{name: "plus tag", email: "cook+recipes@example.com", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "too short", password: "Ab1!", wantErr: "at least 8 characters"},
		{name: "no uppercase", password: "secret1!pass", wantErr: "uppercase"},
		{name: "no lowercase", password: "SECRET1!PASS", wantErr: "lowercase"},
		{name: "no digit", password: "Secret!!pass", wantErr: "digit"},
		{name: "no symbol", password: "Secret12pass", wantErr: "symbol"},
		{name: "valid", password: "Secret1!pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validatePassword(%q) error = %v, want nil", tt.password, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("validatePassword(%q) error = %v, want mention of %q", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHandleRegisterRejectsBadInput(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "email=cook@example.com"},
		{name: "unknown field", body: `{"email":"cook@example.com","password":"Secret1!pass","role":"admin"}`},
		{name: "invalid email", body: `{"email":"cook","password":"Secret1!pass"}`},
		{name: "weak password", body: `{"email":"cook@example.com","password":"password"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			a.handleRegister(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleLoginRejectsBadBody(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
