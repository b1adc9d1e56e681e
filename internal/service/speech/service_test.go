package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	speechmodel "github.com/zhouzirui/viridian/backend/internal/model/speech"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, string, []byte, string) (string, error) {
	return s.text, s.err
}

type stubSynthesizer struct {
	mu       sync.Mutex
	active   int
	overlap  bool
	requests []SynthesisRequest
	err      error
}

func (s *stubSynthesizer) Synthesize(_ context.Context, req SynthesisRequest) (speechmodel.Clip, error) {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.err != nil {
		return speechmodel.Clip{}, s.err
	}
	return speechmodel.Clip{SessionID: req.SessionID, Text: req.Text, Audio: []byte(req.Text)}, nil
}

func TestServiceTranscribe(t *testing.T) {
	cases := []struct {
		name    string
		asr     stubTranscriber
		want    string
		wantErr bool
	}{
		{name: "text", asr: stubTranscriber{text: " hello "}, want: "hello"},
		{name: "empty", asr: stubTranscriber{text: "  "}, want: UnrecognizedAudio},
		{name: "failure", asr: stubTranscriber{err: errors.New("socket closed")}, wantErr: true},
	}

	for _, tc := range cases {
		svc := newService(tc.asr, &stubSynthesizer{}, nil, true)
		got, err := svc.Transcribe(context.Background(), "s1", []byte{1}, "wav")
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: Transcribe: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: text = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(nil)
	if svc.Enabled() {
		t.Fatal("service without credentials should be disabled")
	}
	if _, err := svc.Transcribe(context.Background(), "s1", []byte{1}, "wav"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}

	svc.Speak("s1", "hello", emotion.Joy)
	svc.Wait()
	if _, ok := svc.LatestClip("s1"); ok {
		t.Fatal("disabled service should not store clips")
	}
}

func TestServiceSpeakSerialisesAndKeepsLatestClip(t *testing.T) {
	tts := &stubSynthesizer{}
	svc := newService(stubTranscriber{}, tts, &speechmodel.SpeechConfig{TTSVoice: "voice"}, true)

	for i := 0; i < 8; i++ {
		svc.Speak("s1", "reply", emotion.Sadness)
	}
	svc.Speak("s2", "other", emotion.Joy)
	svc.Wait()

	if tts.overlap {
		t.Fatal("syntheses overlapped")
	}
	if len(tts.requests) != 9 {
		t.Fatalf("requests = %d, want 9", len(tts.requests))
	}
	if tts.requests[0].Voice != "voice" {
		t.Errorf("voice = %q, want configured voice", tts.requests[0].Voice)
	}

	clip, ok := svc.LatestClip("s2")
	if !ok || clip.Text != "other" || clip.Emotion != string(emotion.Joy) {
		t.Fatalf("latest clip = %+v, %v", clip, ok)
	}
	if _, ok := svc.LatestClip("unknown"); ok {
		t.Fatal("unknown session has no clip")
	}
}

func TestServiceSpeakSwallowsErrors(t *testing.T) {
	svc := newService(stubTranscriber{}, &stubSynthesizer{err: errors.New("tts down")}, nil, true)

	svc.Speak("s1", "reply", emotion.Fear)
	svc.Speak("s1", "", emotion.Fear)
	svc.Wait()

	if _, ok := svc.LatestClip("s1"); ok {
		t.Fatal("failed synthesis should not store a clip")
	}
}
