package emotion

import "strings"

// Label 表示分类器输出的六类情绪标签。
type Label string

const (
	Sadness Label = "sadness"
	Anger   Label = "anger"
	Fear    Label = "fear"
	Joy     Label = "joy"
	Love    Label = "love"
	Neutral Label = "neutral"
)

// Labels lists the closed label set in a stable order.
func Labels() []Label {
	return []Label{Sadness, Anger, Fear, Joy, Love, Neutral}
}

// Valid reports whether l belongs to the closed label set.
func (l Label) Valid() bool {
	switch l {
	case Sadness, Anger, Fear, Joy, Love, Neutral:
		return true
	default:
		return false
	}
}

// Normalize maps anything outside the label set to Neutral.
func (l Label) Normalize() Label {
	if l.Valid() {
		return l
	}
	return Neutral
}

// Parse 解析外部输入的情绪名称，未知值回退为 neutral。
// The boolean is false when the fallback was applied.
func Parse(raw string) (Label, bool) {
	normalized := Label(strings.ToLower(strings.TrimSpace(raw)))
	if alias, ok := labelAliases[string(normalized)]; ok {
		normalized = alias
	}
	if !normalized.Valid() {
		return Neutral, false
	}
	return normalized, true
}

var labelAliases = map[string]Label{
	"sad":       Sadness,
	"angry":     Anger,
	"anxious":   Fear,
	"anxiety":   Fear,
	"scared":    Fear,
	"happy":     Joy,
	"happiness": Joy,
	"surprise":  Joy,
	"tender":    Love,
}
