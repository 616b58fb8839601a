package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubHealth struct {
	status string
}

func (s stubHealth) Check(context.Context) HealthStatus {
	return HealthStatus{Status: s.status, Timestamp: time.Now().UTC(), Components: map[string]string{"graph": s.status}}
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode int
	}{
		{name: "up", status: "up", wantCode: http.StatusOK},
		{name: "degraded", status: "degraded", wantCode: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer("127.0.0.1:0", stubHealth{status: tc.status})
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var got HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode health: %v", err)
			}
			if got.Status != tc.status {
				t.Errorf("expected status %q, got %q", tc.status, got.Status)
			}
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	GraphNodes.Set(3)
	srv := NewServer("127.0.0.1:0", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestInitTracing_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
