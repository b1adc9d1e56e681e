package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	speechmodel "github.com/zhouzirui/viridian/backend/internal/model/speech"
)

const (
	defaultASREndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

	// 16kHz / 16bit / mono, 200ms per packet
	asrChunkSize     = 6400
	asrChunkInterval = 200 * time.Millisecond

	asrSuccessCode = 20000000
)

// ASRClient 火山引擎大模型流式识别客户端。
type ASRClient struct {
	config        *speechmodel.SpeechConfig
	dialer        *websocket.Dialer
	endpoint      string
	chunkInterval time.Duration
}

// NewASRClient 创建 ASR 客户端。
func NewASRClient(cfg *speechmodel.SpeechConfig) *ASRClient {
	endpoint := defaultASREndpoint
	if cfg != nil && strings.TrimSpace(cfg.ASREndpoint) != "" {
		endpoint = strings.TrimSpace(cfg.ASREndpoint)
	}
	return &ASRClient{
		config:        cfg,
		dialer:        &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		endpoint:      endpoint,
		chunkInterval: asrChunkInterval,
	}
}

type asrRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

type asrUtterance struct {
	Text     string `json:"text"`
	Definite bool   `json:"definite"`
}

type asrServerMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result"`
}

// Transcribe 上传整段音频并返回最终识别文本（可能为空）。
func (c *ASRClient) Transcribe(ctx context.Context, sessionID string, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data to send")
	}

	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return "", err
	}

	resourceID := "volc.bigasr.sauc.duration"
	if c.config.ConcurrentMode {
		resourceID = "volc.bigasr.sauc.concurrent"
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", sessionID)

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return "", fmt.Errorf("failed to connect to ASR WebSocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.Printf("[ASR] connected with logid: %s", logid)
		}
	}

	payload, err := json.Marshal(c.buildRequest(sessionID, format))
	if err != nil {
		return "", fmt.Errorf("failed to marshal ASR request: %w", err)
	}
	compressed, err := compress(payload, GzipCompression)
	if err != nil {
		return "", err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, newFullClientRequest(compressed, GzipCompression).Encode()); err != nil {
		return "", fmt.Errorf("failed to send ASR request: %w", err)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ReadMessage 不感知 ctx，取消时直接关闭连接
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sendErr := make(chan error, 1)
	go func() {
		err := c.sendAudio(ctx, conn, audio)
		if err != nil {
			cancel()
		}
		sendErr <- err
	}()

	text, err := c.receive(conn, sessionID)
	if err != nil {
		if parentErr := parent.Err(); parentErr != nil {
			return "", parentErr
		}
		select {
		case sErr := <-sendErr:
			if sErr != nil {
				return "", fmt.Errorf("failed to send audio data: %w", sErr)
			}
		default:
		}
		return "", err
	}
	return text, nil
}

func (c *ASRClient) buildRequest(sessionID, format string) *asrRequest {
	req := &asrRequest{}
	req.User.UID = sessionID

	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = "wav"
	case "webm", "ogg":
		format = "ogg"
		req.Audio.Codec = "opus"
	}
	req.Audio.Format = format
	if req.Audio.Codec == "" {
		req.Audio.Codec = "raw"
	}

	req.Audio.Language = "zh-CN"
	if c.config != nil && strings.TrimSpace(c.config.ASRLanguage) != "" {
		req.Audio.Language = strings.TrimSpace(c.config.ASRLanguage)
	}
	req.Audio.Rate = 16000
	req.Audio.Bits = 16
	req.Audio.Channel = 1

	req.Request.ModelName = "bigmodel"
	req.Request.EnableITN = true
	req.Request.EnablePunc = true
	req.Request.ShowUtterances = true
	req.Request.ResultType = "full"
	req.Request.EndWindowSize = 800
	return req
}

func (c *ASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, audio []byte) error {
	// FullClientRequest 占用序号 1
	sequence := int32(2)

	for start := 0; start < len(audio); start += asrChunkSize {
		end := min(start+asrChunkSize, len(audio))
		last := end == len(audio)

		chunk, err := compress(audio[start:end], GzipCompression)
		if err != nil {
			return err
		}
		frame := newAudioOnlyRequest(chunk, sequence, last, GzipCompression)
		if err := conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
			return err
		}
		sequence++

		if last || c.chunkInterval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.chunkInterval):
		}
	}
	return nil
}

func (c *ASRClient) receive(conn *websocket.Conn, sessionID string) (string, error) {
	var text string

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("failed to read ASR response: %w", err)
		}

		frame, err := DecodeFrame(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to decode ASR message: %w", err)
		}

		switch frame.Header.MessageType {
		case ErrorMessage:
			body, _ := frame.Body()
			return "", fmt.Errorf("ASR error %d: %s", frame.ErrorCode, string(body))

		case FullServerResponse:
			body, err := frame.Body()
			if err != nil {
				return "", fmt.Errorf("failed to decompress ASR payload: %w", err)
			}

			var msg asrServerMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				log.Printf("[ASR] failed to unmarshal response: %v", err)
				continue
			}
			if msg.Code != 0 && msg.Code != asrSuccessCode {
				return "", fmt.Errorf("ASR API error %d: %s", msg.Code, msg.Message)
			}

			candidate := msg.Result.Text
			if candidate == "" {
				candidate = joinUtterances(msg.Result.Utterances)
			}
			if candidate != "" {
				text = candidate
			}

			if frame.IsLast() || msg.Sequence < 0 {
				if strings.TrimSpace(text) == "" {
					log.Printf("[ASR] empty transcript for session %s", sessionID)
				}
				return strings.TrimSpace(text), nil
			}
		}
	}
}

func joinUtterances(utterances []asrUtterance) string {
	parts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if t := strings.TrimSpace(u.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// resolveCredentials 返回规范化后的 AppID 与 AccessToken，缺失时给出明确错误。
func resolveCredentials(cfg *speechmodel.SpeechConfig) (string, string, error) {
	if cfg == nil {
		return "", "", fmt.Errorf("火山引擎语音配置未初始化")
	}

	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)
	if appID == "" || token == "" {
		return "", "", fmt.Errorf("火山引擎语音配置缺少 AppID 或 AccessToken")
	}
	return appID, token, nil
}
