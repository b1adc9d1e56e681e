package speech

import (
	"strings"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
)

// VoiceEmotion 情感音色参数。
type VoiceEmotion struct {
	Enabled bool
	Name    string
	Scale   float32
}

const defaultEmotionScale = 3

// Replies answer the user's emotion, so the voice leans toward soothing tones.
var replyTones = map[emotion.Label]string{
	emotion.Sadness: "comfort",
	emotion.Fear:    "comfort",
	emotion.Anger:   "tender",
	emotion.Love:    "tender",
	emotion.Joy:     "happy",
}

// VoiceEmotionFor 返回回复某种用户情绪时使用的音色参数；neutral 不启用情感。
func VoiceEmotionFor(label emotion.Label) VoiceEmotion {
	tone, ok := replyTones[label.Normalize()]
	if !ok {
		return VoiceEmotion{}
	}
	return VoiceEmotion{Enabled: true, Name: tone, Scale: defaultEmotionScale}
}

func supportsEmotion(voice string) bool {
	normalized := strings.ToLower(strings.TrimSpace(voice))
	return normalized != "" && strings.Contains(normalized, "_emo")
}
