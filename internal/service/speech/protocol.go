package speech

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// 火山引擎语音 WebSocket 二进制帧：4 字节头，可选序号与事件元数据，随后是 size + payload。

const protocolVersion = 0b0001

// MessageType 帧类型（头部第二字节高 4 位）。
type MessageType uint8

const (
	FullClientRequest       MessageType = 0b0001
	AudioOnlyRequest        MessageType = 0b0010
	FullServerResponse      MessageType = 0b1001
	AudioOnlyServerResponse MessageType = 0b1011
	ErrorMessage            MessageType = 0b1111
)

// MessageFlags 帧标志（头部第二字节低 4 位）。
type MessageFlags uint8

const (
	NoSequenceNumber       MessageFlags = 0b0000
	PositiveSequenceNumber MessageFlags = 0b0001
	LastPacketNoSequence   MessageFlags = 0b0010
	NegativeSequenceNumber MessageFlags = 0b0011
	WithEvent              MessageFlags = 0b0100

	sequenceMask MessageFlags = 0b0011
)

// EventType 服务端事件编号。
type EventType int32

const (
	EventTypeNone               EventType = 0
	EventTypeStartConnection    EventType = 1
	EventTypeFinishConnection   EventType = 2
	EventTypeConnectionStarted  EventType = 50
	EventTypeConnectionFailed   EventType = 51
	EventTypeConnectionFinished EventType = 52
	EventTypeSessionStarted     EventType = 150
	EventTypeSessionFinished    EventType = 152
	EventTypeSessionFailed      EventType = 153
)

// SerializationMethod payload 序列化方式。
type SerializationMethod uint8

const (
	NoSerialization   SerializationMethod = 0b0000
	JSONSerialization SerializationMethod = 0b0001
)

// CompressionMethod payload 压缩方式。
type CompressionMethod uint8

const (
	NoCompression   CompressionMethod = 0b0000
	GzipCompression CompressionMethod = 0b0001
)

// Header 帧头。
type Header struct {
	MessageType   MessageType
	Flags         MessageFlags
	Serialization SerializationMethod
	Compression   CompressionMethod
	// Words is the header length in 4-byte words; 1 for every frame we send.
	Words uint8
}

// Frame 一个完整的协议帧。
type Frame struct {
	Header    Header
	Sequence  int32
	Event     EventType
	SessionID string
	ConnectID string
	ErrorCode uint32
	Payload   []byte
}

func (h Header) encode() []byte {
	words := h.Words
	if words == 0 {
		words = 1
	}
	return []byte{
		protocolVersion<<4 | words,
		uint8(h.MessageType)<<4 | uint8(h.Flags),
		uint8(h.Serialization)<<4 | uint8(h.Compression),
		0x00,
	}
}

func decodeHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, fmt.Errorf("header too short: got %d, need 4", len(data))
	}
	if version := data[0] >> 4; version != protocolVersion {
		return Header{}, fmt.Errorf("unsupported protocol version: %d", version)
	}
	return Header{
		Words:         data[0] & 0x0F,
		MessageType:   MessageType(data[1] >> 4),
		Flags:         MessageFlags(data[1] & 0x0F),
		Serialization: SerializationMethod(data[2] >> 4),
		Compression:   CompressionMethod(data[2] & 0x0F),
	}, nil
}

func (f *Frame) hasSequence() bool {
	switch f.Header.Flags & sequenceMask {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		return true
	}
	return false
}

func (f *Frame) hasEvent() bool {
	return f.Header.Flags&WithEvent == WithEvent
}

// IsLast 判断是否为最后一包。
func (f *Frame) IsLast() bool {
	switch f.Header.Flags & sequenceMask {
	case LastPacketNoSequence, NegativeSequenceNumber:
		return true
	}
	return false
}

// Encode 序列化帧。
func (f *Frame) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(f.Header.encode())

	if f.hasSequence() {
		writeUint32(&buf, uint32(f.Sequence))
	}

	if f.hasEvent() {
		writeUint32(&buf, uint32(f.Event))
		if !eventSkipsSessionID(f.Event) {
			writeSized(&buf, f.SessionID)
		}
		if eventHasConnectID(f.Event) {
			writeSized(&buf, f.ConnectID)
		}
	}

	if f.Header.MessageType == ErrorMessage {
		writeUint32(&buf, f.ErrorCode)
	}

	writeUint32(&buf, uint32(len(f.Payload)))
	buf.Write(f.Payload)
	return buf.Bytes()
}

// DecodeFrame 从 reader 解析一个完整的帧。
func DecodeFrame(r io.Reader) (*Frame, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err := decodeHeader(head)
	if err != nil {
		return nil, err
	}

	f := &Frame{Header: header}

	if extra := int(header.Words)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("read extended header: %w", err)
		}
	}

	if f.hasSequence() {
		seq, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read sequence: %w", err)
		}
		f.Sequence = int32(seq)
	}

	if f.hasEvent() {
		event, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("read event: %w", err)
		}
		f.Event = EventType(int32(event))

		if !eventSkipsSessionID(f.Event) {
			if f.SessionID, err = readSized(r); err != nil {
				return nil, fmt.Errorf("read session id: %w", err)
			}
		}
		if eventHasConnectID(f.Event) {
			if f.ConnectID, err = readSized(r); err != nil {
				return nil, fmt.Errorf("read connect id: %w", err)
			}
		}
	}

	if header.MessageType == ErrorMessage {
		if f.ErrorCode, err = readUint32(r); err != nil {
			return nil, fmt.Errorf("read error code: %w", err)
		}
	}

	size, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read payload size: %w", err)
	}
	if size > 0 {
		f.Payload = make([]byte, size)
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return nil, fmt.Errorf("read payload (%d bytes): %w", size, err)
		}
	}
	return f, nil
}

// Body 返回解压后的 payload。
func (f *Frame) Body() ([]byte, error) {
	return decompress(f.Payload, f.Header.Compression)
}

// newFullClientRequest 带 JSON 参数的首帧。
func newFullClientRequest(payload []byte, compression CompressionMethod) *Frame {
	return &Frame{
		Header: Header{
			MessageType:   FullClientRequest,
			Flags:         NoSequenceNumber,
			Serialization: JSONSerialization,
			Compression:   compression,
		},
		Payload: payload,
	}
}

// newAudioOnlyRequest 音频分包；最后一包使用负序号。
func newAudioOnlyRequest(audio []byte, sequence int32, last bool, compression CompressionMethod) *Frame {
	flags := NoSequenceNumber
	switch {
	case last && sequence != 0:
		flags = NegativeSequenceNumber
		sequence = -sequence
	case last:
		flags = LastPacketNoSequence
	case sequence > 0:
		flags = PositiveSequenceNumber
	}

	return &Frame{
		Header: Header{
			MessageType:   AudioOnlyRequest,
			Flags:         flags,
			Serialization: NoSerialization,
			Compression:   compression,
		},
		Sequence: sequence,
		Payload:  audio,
	}
}

func eventSkipsSessionID(event EventType) bool {
	switch event {
	case EventTypeStartConnection, EventTypeFinishConnection,
		EventTypeConnectionStarted, EventTypeConnectionFailed,
		EventTypeConnectionFinished:
		return true
	}
	return false
}

func eventHasConnectID(event EventType) bool {
	switch event {
	case EventTypeConnectionStarted, EventTypeConnectionFailed, EventTypeConnectionFinished:
		return true
	}
	return false
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeSized(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readSized(r io.Reader) (string, error) {
	size, err := readUint32(r)
	if err != nil || size == 0 {
		return "", err
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

func compress(data []byte, method CompressionMethod) ([]byte, error) {
	switch method {
	case NoCompression:
		return data, nil
	case GzipCompression:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}

func decompress(data []byte, method CompressionMethod) ([]byte, error) {
	switch method {
	case NoCompression:
		return data, nil
	case GzipCompression:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip read: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}
