package therapy

import "strings"

// Theme is a recurring topic found in what the user has said so far.
type Theme string

const (
	ThemeNone    Theme = ""
	ThemeStress  Theme = "stress"
	ThemeSadness Theme = "sadness"
	ThemeFear    Theme = "fear"
)

const (
	themeThreshold = 2
	// themeWindow is how many trailing log entries are searched for a theme.
	themeWindow = 5
)

var themeKeywords = []struct {
	theme    Theme
	keywords []string
}{
	{theme: ThemeStress, keywords: []string{"stress", "pressure"}},
	{theme: ThemeSadness, keywords: []string{"sad", "hurt"}},
	{theme: ThemeFear, keywords: []string{"afraid", "fail", "anxious"}},
}

// DetectTheme counts user messages among the last five log entries mentioning
// each theme; the first theme in stress, sadness, fear order that reaches two
// mentions wins.
func DetectTheme(log []Entry) Theme {
	if over := len(log) - themeWindow; over > 0 {
		log = log[over:]
	}

	counts := make(map[Theme]int, len(themeKeywords))
	for _, msg := range log {
		if msg.Sender != SenderUser {
			continue
		}
		text := strings.ToLower(msg.Text)
		for _, tk := range themeKeywords {
			if containsAny(text, tk.keywords) {
				counts[tk.theme]++
			}
		}
	}

	for _, tk := range themeKeywords {
		if counts[tk.theme] >= themeThreshold {
			return tk.theme
		}
	}
	return ThemeNone
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
