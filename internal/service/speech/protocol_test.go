package speech

import (
	"bytes"
	"testing"
)

func TestFrameEventMetadataRoundTrip(t *testing.T) {
	frame := &Frame{
		Header: Header{
			MessageType:   FullServerResponse,
			Flags:         WithEvent,
			Serialization: JSONSerialization,
		},
		Event:     EventTypeSessionFinished,
		SessionID: "session-1",
		Payload:   []byte(`{"code":0}`),
	}

	got, err := DecodeFrame(bytes.NewReader(frame.Encode()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Event != EventTypeSessionFinished || got.SessionID != "session-1" {
		t.Fatalf("event metadata = (%d, %q), want (%d, %q)", got.Event, got.SessionID, EventTypeSessionFinished, "session-1")
	}
	if string(got.Payload) != `{"code":0}` {
		t.Fatalf("payload = %q", got.Payload)
	}
}

func TestFrameConnectEventsCarryConnectID(t *testing.T) {
	frame := &Frame{
		Header:    Header{MessageType: FullServerResponse, Flags: WithEvent},
		Event:     EventTypeConnectionStarted,
		SessionID: "ignored",
		ConnectID: "conn-9",
	}

	got, err := DecodeFrame(bytes.NewReader(frame.Encode()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.SessionID != "" {
		t.Errorf("connection events carry no session id, got %q", got.SessionID)
	}
	if got.ConnectID != "conn-9" {
		t.Errorf("ConnectID = %q, want conn-9", got.ConnectID)
	}
}

func TestAudioOnlyRequestLastPacketUsesNegativeSequence(t *testing.T) {
	cases := []struct {
		name     string
		sequence int32
		last     bool
		flags    MessageFlags
		want     int32
	}{
		{name: "middle packet", sequence: 2, last: false, flags: PositiveSequenceNumber, want: 2},
		{name: "last packet", sequence: 3, last: true, flags: NegativeSequenceNumber, want: -3},
		{name: "last without sequence", sequence: 0, last: true, flags: LastPacketNoSequence, want: 0},
	}

	for _, tc := range cases {
		frame := newAudioOnlyRequest([]byte{1, 2, 3}, tc.sequence, tc.last, NoCompression)
		got, err := DecodeFrame(bytes.NewReader(frame.Encode()))
		if err != nil {
			t.Fatalf("%s: DecodeFrame: %v", tc.name, err)
		}
		if got.Header.Flags != tc.flags {
			t.Errorf("%s: flags = %04b, want %04b", tc.name, got.Header.Flags, tc.flags)
		}
		if got.Sequence != tc.want {
			t.Errorf("%s: sequence = %d, want %d", tc.name, got.Sequence, tc.want)
		}
		if got.IsLast() != tc.last {
			t.Errorf("%s: IsLast = %v, want %v", tc.name, got.IsLast(), tc.last)
		}
	}
}

func TestErrorFrameCarriesCode(t *testing.T) {
	frame := &Frame{
		Header:    Header{MessageType: ErrorMessage},
		ErrorCode: 45000001,
		Payload:   []byte("invalid audio"),
	}

	got, err := DecodeFrame(bytes.NewReader(frame.Encode()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.ErrorCode != 45000001 || string(got.Payload) != "invalid audio" {
		t.Fatalf("got (%d, %q)", got.ErrorCode, got.Payload)
	}
}

func TestDecodeFrameRejectsUnknownVersion(t *testing.T) {
	data := []byte{0x21, 0x90, 0x00, 0x00, 0, 0, 0, 0}
	if _, err := DecodeFrame(bytes.NewReader(data)); err == nil {
		t.Fatal("expected version error")
	}
}

func TestGzipBody(t *testing.T) {
	compressed, err := compress([]byte("hello"), GzipCompression)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	frame := newFullClientRequest(compressed, GzipCompression)

	got, err := DecodeFrame(bytes.NewReader(frame.Encode()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	body, err := got.Body()
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q", body)
	}
}
