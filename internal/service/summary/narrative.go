package summary

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
)

var dominantLines = map[emotion.Label]string{
	emotion.Sadness: "You carried a noticeable sense of heaviness.",
	emotion.Anger:   "There was clear frustration present.",
	emotion.Fear:    "There seemed to be underlying worry.",
	emotion.Joy:     "There were moments of warmth and positivity.",
	emotion.Love:    "There was emotional depth in what you shared.",
	emotion.Neutral: "You explored your thoughts thoughtfully.",
}

const (
	fallbackLine   = "You expressed meaningful emotions."
	shiftingLine   = " Your emotions shifted through different states, showing emotional complexity."
	consistentLine = " The feeling remained consistent throughout this session."
	closingLine    = " Thank you for allowing yourself to express this."
	reportClosing  = "You showed courage by expressing this."
)

func narrative(dominant emotion.Label, distinct int) string {
	base, ok := dominantLines[dominant]
	if !ok {
		base = fallbackLine
	}

	variation := ""
	switch {
	case distinct > 2:
		variation = shiftingLine
	case distinct == 1:
		variation = consistentLine
	}

	return base + variation + closingLine
}

// Report renders the bullet-point text shown when a session ends.
func (s *Summary) Report() string {
	var b strings.Builder
	b.WriteString("Session Summary:\n\n")
	fmt.Fprintf(&b, "• Dominant emotion: %s\n", s.DominantEmotion)
	fmt.Fprintf(&b, "• Messages shared: %d\n", s.MessageCount)
	fmt.Fprintf(&b, "• Emotional range: %d different emotions\n\n", s.EmotionalVariation)
	b.WriteString(reportClosing)
	return b.String()
}
