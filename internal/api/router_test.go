package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoutesServeHealth(t *testing.T) {
	a := newTestAPI(t)

	handler, err := a.Routes()
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "ok" {
		t.Fatalf("body = %q, want ok", got)
	}
}
