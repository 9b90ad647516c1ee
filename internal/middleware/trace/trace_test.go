package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "forgeledger/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(applog.New(applog.DefaultConfig()))

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("handler saw no request id")
	}
	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("request id = %q, want req_ prefix", seen)
	}

	var other string
	handler2 := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		other = GetRequestID(r.Context())
	}))
	handler2.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if other == seen {
		t.Errorf("two requests shared id %q", seen)
	}
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID on bare context = %q, want empty", id)
	}
}

func TestTotalRequests(t *testing.T) {
	m := NewMiddleware(applog.New(applog.DefaultConfig()))
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if got := m.TotalRequests(); got != 5 {
		t.Errorf("TotalRequests() = %d, want 5", got)
	}
}
