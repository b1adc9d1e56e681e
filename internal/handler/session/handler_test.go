package session

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/conversation"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, []byte, string) (string, error) {
	return "I am worried about my exams", nil
}

type noopSpeaker struct{}

func (noopSpeaker) Speak(string, string, emotion.Label) {}

func setupRouter(withSpeech bool) *chi.Mux {
	deps := conversation.Dependencies{
		Engine: therapy.NewEngine(therapy.WithRandom(therapy.NewRandom(3))),
	}
	if withSpeech {
		deps.Transcriber = fakeTranscriber{}
		deps.Speaker = noopSpeaker{}
	}

	r := chi.NewRouter()
	New(conversation.NewService(deps)).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func startSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := do(t, r, http.MethodPost, "/session", nil, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if payload.SessionID == "" {
		t.Fatal("expected sessionId")
	}
	return payload.SessionID
}

func TestTextTurn(t *testing.T) {
	r := setupRouter(false)
	id := startSession(t, r)

	resp := do(t, r, http.MethodPost, "/session/"+id+"/text", []byte(`{"text":"I feel so sad"}`), "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Reply   string `json:"reply"`
		Emotion string `json:"emotion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Emotion != "sadness" || result.Reply == "" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTextTurnErrors(t *testing.T) {
	r := setupRouter(false)
	id := startSession(t, r)

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "unknown session", path: "/session/missing/text", body: `{"text":"hi"}`, want: http.StatusNotFound},
		{name: "empty text", path: "/session/" + id + "/text", body: `{"text":"  "}`, want: http.StatusBadRequest},
		{name: "malformed body", path: "/session/" + id + "/text", body: `{`, want: http.StatusBadRequest},
	}

	for _, tc := range cases {
		resp := do(t, r, http.MethodPost, tc.path, []byte(tc.body), "application/json")
		if resp.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func audioForm(t *testing.T) ([]byte, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write([]byte("audio")); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body.Bytes(), writer.FormDataContentType()
}

func TestAudioTurn(t *testing.T) {
	r := setupRouter(true)
	id := startSession(t, r)

	body, contentType := audioForm(t)
	resp := do(t, r, http.MethodPost, "/session/"+id+"/audio", body, contentType)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"emotion":"fear"`) {
		t.Fatalf("expected fear emotion, got %s", resp.Body.String())
	}
}

func TestAudioTurnWithoutSpeech(t *testing.T) {
	r := setupRouter(false)
	id := startSession(t, r)

	body, contentType := audioForm(t)
	resp := do(t, r, http.MethodPost, "/session/"+id+"/audio", body, contentType)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	resp = do(t, r, http.MethodPost, "/session/"+id+"/audio", []byte("not multipart"), "text/plain")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestEndSession(t *testing.T) {
	r := setupRouter(false)
	id := startSession(t, r)

	resp := do(t, r, http.MethodPost, "/session/"+id+"/end", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"summary":null`) {
		t.Fatalf("expected null summary for empty session, got %s", resp.Body.String())
	}

	do(t, r, http.MethodPost, "/session/"+id+"/text", []byte(`{"text":"I am so angry"}`), "application/json")
	resp = do(t, r, http.MethodPost, "/session/"+id+"/end", nil, "")

	var result struct {
		Summary *string `json:"summary"`
		Stats   struct {
			DominantEmotion string `json:"dominantEmotion"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Summary == nil || !strings.Contains(*result.Summary, "Dominant emotion: anger") {
		t.Fatalf("unexpected summary %v", result.Summary)
	}
	if result.Stats.DominantEmotion != "anger" {
		t.Fatalf("stats dominant = %q", result.Stats.DominantEmotion)
	}

	if resp := do(t, r, http.MethodPost, "/session/missing/end", nil, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestStateAndTranscript(t *testing.T) {
	r := setupRouter(false)
	id := startSession(t, r)

	do(t, r, http.MethodPost, "/session/"+id+"/text", []byte(`{"text":"I feel sad"}`), "application/json")

	resp := do(t, r, http.MethodGet, "/session/"+id+"/state", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var state therapy.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.History) != 1 || state.History[0] != emotion.Sadness || state.Intensity != emotion.IntensityLow {
		t.Fatalf("unexpected state %+v", state)
	}

	resp = do(t, r, http.MethodGet, "/session/"+id+"/transcript", nil, "")
	var transcript struct {
		Messages []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if len(transcript.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(transcript.Messages))
	}

	if resp := do(t, r, http.MethodGet, "/session/missing/transcript", nil, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestInferAudioFormat(t *testing.T) {
	cases := map[string]string{
		"a.WAV":    "wav",
		"b.mp3":    "mp3",
		"c":        "webm",
		"d.ogg":    "ogg",
		"e.random": "webm",
	}
	for name, want := range cases {
		if got := inferAudioFormat(name); got != want {
			t.Errorf("inferAudioFormat(%q) = %q, want %q", name, got, want)
		}
	}
}
