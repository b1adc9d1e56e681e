package speech

// SpeechConfig 语音服务配置
type SpeechConfig struct {
	// Volcengine 凭证
	AppID          string `json:"appId"`
	AccessToken    string `json:"accessToken"`
	ConcurrentMode bool   `json:"concurrentMode"` // ASR 并发版资源（false 为小时版）

	// Endpoints；为空时使用官方地址
	ASREndpoint string `json:"asrEndpoint,omitempty"`
	TTSEndpoint string `json:"ttsEndpoint,omitempty"`

	ASRLanguage string `json:"asrLanguage"`

	TTSVoice    string  `json:"ttsVoice"`
	TTSSpeed    float32 `json:"ttsSpeed"`
	TTSVolume   float32 `json:"ttsVolume"`
	TTSLanguage string  `json:"ttsLanguage"`

	Timeout int `json:"timeout"` // seconds
}
