package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	speechmodel "github.com/zhouzirui/viridian/backend/internal/model/speech"
)

const (
	defaultTTSEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"
	defaultTTSVoice    = "en_female_skye_emo_v2_mars_bigtts"
	defaultTTSFormat   = "mp3"
	ttsSampleRate      = 24000
)

// SynthesisRequest 一次语音合成请求。
type SynthesisRequest struct {
	SessionID string
	Text      string
	Voice     string
	Emotion   VoiceEmotion
}

// TTSClient 火山引擎单向流式 TTS 客户端。
type TTSClient struct {
	config   *speechmodel.SpeechConfig
	dialer   *websocket.Dialer
	endpoint string
}

// NewTTSClient 创建 TTS 客户端。
func NewTTSClient(cfg *speechmodel.SpeechConfig) *TTSClient {
	endpoint := defaultTTSEndpoint
	if cfg != nil && strings.TrimSpace(cfg.TTSEndpoint) != "" {
		endpoint = strings.TrimSpace(cfg.TTSEndpoint)
	}
	return &TTSClient{
		config:   cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		endpoint: endpoint,
	}
}

type ttsRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string         `json:"speaker"`
		Text        string         `json:"text"`
		AudioParams ttsAudioParams `json:"audio_params"`
		Additions   string         `json:"additions,omitempty"`
		Language    string         `json:"language,omitempty"`
	} `json:"req_params"`
}

type ttsAudioParams struct {
	Format        string  `json:"format"`
	SampleRate    int     `json:"sample_rate"`
	SpeedRatio    float32 `json:"speed_ratio,omitempty"`
	VolumeRatio   float32 `json:"volume_ratio,omitempty"`
	Emotion       string  `json:"emotion,omitempty"`
	EmotionScale  float32 `json:"emotion_scale,omitempty"`
	EnableEmotion bool    `json:"enable_emotion,omitempty"`
}

type ttsServerMessage struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

// Synthesize 合成整段文本，依次尝试候选音色与资源 ID。
func (c *TTSClient) Synthesize(ctx context.Context, req SynthesisRequest) (speechmodel.Clip, error) {
	if strings.TrimSpace(req.Text) == "" {
		return speechmodel.Clip{}, fmt.Errorf("TTS text is empty")
	}

	appKey, accessKey, err := resolveCredentials(c.config)
	if err != nil {
		return speechmodel.Clip{}, err
	}

	speakers := resolveSpeakerCandidates(req.Voice, c.config.TTSVoice)
	var lastMismatch error

	for _, speaker := range speakers {
		for idx, resourceID := range resolveResourceCandidates(speaker) {
			clip, err := c.synthesizeWith(ctx, req, appKey, accessKey, speaker, resourceID)
			if err == nil {
				if idx > 0 {
					log.Printf("[TTS] voice %s succeeded with fallback resource %s", speaker, resourceID)
				}
				return clip, nil
			}
			if !isResourceMismatchError(err) {
				return speechmodel.Clip{}, err
			}
			log.Printf("[TTS] voice %s resource %s mismatch: %v", speaker, resourceID, err)
			lastMismatch = err
		}
	}

	if lastMismatch != nil {
		return speechmodel.Clip{}, lastMismatch
	}
	return speechmodel.Clip{}, fmt.Errorf("TTS synthesis failed: no compatible resource for voices %v", speakers)
}

func (c *TTSClient) synthesizeWith(ctx context.Context, req SynthesisRequest, appKey, accessKey, speaker, resourceID string) (speechmodel.Clip, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appKey)
	header.Set("X-Api-Access-Key", accessKey)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", connectID)

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return speechmodel.Clip{}, fmt.Errorf("failed to connect to TTS WebSocket: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.Printf("[TTS] connected with logid: %s", logid)
		}
	}

	payload, err := json.Marshal(c.buildRequest(req, speaker))
	if err != nil {
		return speechmodel.Clip{}, fmt.Errorf("failed to marshal TTS request: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, newFullClientRequest(payload, NoCompression).Encode()); err != nil {
		return speechmodel.Clip{}, fmt.Errorf("failed to send TTS request: %w", err)
	}

	var (
		audio    bytes.Buffer
		reqID    string
		duration int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return speechmodel.Clip{}, ctxErr
			}
			return speechmodel.Clip{}, fmt.Errorf("failed to read TTS response: %w", err)
		}

		frame, err := DecodeFrame(bytes.NewReader(data))
		if err != nil {
			return speechmodel.Clip{}, fmt.Errorf("failed to decode TTS message: %w", err)
		}

		switch frame.Header.MessageType {
		case ErrorMessage:
			body, _ := frame.Body()
			return speechmodel.Clip{}, fmt.Errorf("TTS error: %s", string(body))

		case AudioOnlyServerResponse:
			chunk, err := frame.Body()
			if err != nil {
				return speechmodel.Clip{}, fmt.Errorf("failed to decompress audio chunk: %w", err)
			}
			audio.Write(chunk)

		case FullServerResponse:
			body, err := frame.Body()
			if err != nil {
				return speechmodel.Clip{}, fmt.Errorf("failed to decompress TTS payload: %w", err)
			}

			var msg ttsServerMessage
			if len(body) > 0 {
				if err := json.Unmarshal(body, &msg); err != nil {
					log.Printf("[TTS] failed to unmarshal response payload: %v", err)
				} else {
					if msg.Code != 0 && msg.Code != 3000 {
						return speechmodel.Clip{}, fmt.Errorf("TTS API error %d: %s", msg.Code, msg.Message)
					}
					if msg.ReqID != "" {
						reqID = msg.ReqID
					}
					if ms, err := strconv.ParseInt(msg.Addition.Duration, 10, 64); err == nil {
						duration = ms
					}
					if msg.Data != "" {
						chunk, err := base64.StdEncoding.DecodeString(msg.Data)
						if err != nil {
							return speechmodel.Clip{}, fmt.Errorf("failed to decode base64 audio chunk: %w", err)
						}
						audio.Write(chunk)
					}
				}
			}

			finished := frame.Event == EventTypeSessionFinished || frame.IsLast() || msg.Sequence < 0
			if !finished {
				continue
			}
			if audio.Len() == 0 {
				return speechmodel.Clip{}, fmt.Errorf("TTS audio is empty")
			}
			if reqID == "" {
				reqID = connectID
			}
			return speechmodel.Clip{
				SessionID: req.SessionID,
				Text:      req.Text,
				Format:    defaultTTSFormat,
				Audio:     audio.Bytes(),
				Duration:  duration,
				RequestID: reqID,
				CreatedAt: time.Now().UTC(),
			}, nil

		default:
			log.Printf("[TTS] unexpected message type: %d", frame.Header.MessageType)
		}
	}
}

func (c *TTSClient) buildRequest(req SynthesisRequest, speaker string) *ttsRequest {
	out := &ttsRequest{}

	out.User.UID = strings.TrimSpace(req.SessionID)
	if out.User.UID == "" {
		out.User.UID = uuid.NewString()
	}

	out.ReqParams.Speaker = speaker
	out.ReqParams.Text = req.Text
	out.ReqParams.AudioParams.Format = defaultTTSFormat
	out.ReqParams.AudioParams.SampleRate = ttsSampleRate

	if speed := c.config.TTSSpeed; speed > 0 && speed != 1.0 {
		out.ReqParams.AudioParams.SpeedRatio = speed
	}
	if volume := c.config.TTSVolume; volume > 0 && volume != 1.0 {
		out.ReqParams.AudioParams.VolumeRatio = volume
	}
	if req.Emotion.Enabled && supportsEmotion(speaker) {
		out.ReqParams.AudioParams.EnableEmotion = true
		out.ReqParams.AudioParams.Emotion = req.Emotion.Name
		out.ReqParams.AudioParams.EmotionScale = req.Emotion.Scale
	}
	if language := strings.TrimSpace(c.config.TTSLanguage); language != "" {
		out.ReqParams.Language = language
	}
	out.ReqParams.Additions = `{"disable_markdown_filter":false}`
	return out
}

func resolveResourceCandidates(voice string) []string {
	const (
		defaultResource = "volc.service_type.10029"
		megaResource    = "volc.megatts.default"
		seedResource    = "seed-tts-2.0"
	)

	voice = strings.TrimSpace(voice)
	if voice == "" {
		return []string{defaultResource, seedResource}
	}
	if strings.HasPrefix(voice, "S_") {
		return []string{megaResource}
	}

	normalized := strings.ToLower(voice)
	for _, hint := range []string{"bigtts", "seed", "megatts", "uranus", "venus", "jupiter", "mars"} {
		if strings.Contains(normalized, hint) {
			return []string{seedResource, defaultResource}
		}
	}
	return []string{defaultResource, seedResource}
}

func resolveSpeakerCandidates(requested, configured string) []string {
	var candidates []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range candidates {
			if strings.EqualFold(existing, s) {
				return
			}
		}
		candidates = append(candidates, s)
	}

	add(requested)
	add(configured)
	add(defaultTTSVoice)
	return candidates
}

func isResourceMismatchError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "resource ID is mismatched with speaker related resource")
}
