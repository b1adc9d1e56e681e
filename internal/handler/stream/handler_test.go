package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
)

func setup(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	svc := conversation.NewService(conversation.Dependencies{})
	session, err := svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession err: %v", err)
	}

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, session.ID
}

func TestStreamEmitsTurnEvents(t *testing.T) {
	r, id := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id+"?message="+url.QueryEscape("I'm scared"), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	body := resp.Body.String()
	order := []string{"event: start", "event: emotion", "event: message", "event: end"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(body, marker)
		if idx <= last {
			t.Fatalf("event %q missing or out of order in %s", marker, body)
		}
		last = idx
	}
	if !strings.Contains(body, `"emotion":"fear"`) {
		t.Fatalf("expected fear emotion in %s", body)
	}
}

func TestStreamRejectsBadRequests(t *testing.T) {
	r, id := setup(t)

	cases := []struct {
		path string
		want int
	}{
		{path: "/stream/" + id, want: http.StatusBadRequest},
		{path: "/stream/missing?message=hi", want: http.StatusNotFound},
	}

	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if resp.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.want, resp.Code)
		}
	}
}
