package emotion

// Pattern is a sustained single-emotion run over the short trailing window.
type Pattern string

const (
	PatternNone              Pattern = "none"
	PatternPersistentSadness Pattern = "persistent_sadness"
	PatternEmotionalDistress Pattern = "emotional_distress"
	PatternAnxiety           Pattern = "anxiety_pattern"
)

// Intensity is a coarse repetition-of-latest proxy, not a variance measure.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Progression is a worsening trajectory over the longer window, gated on the latest label.
type Progression string

const (
	ProgressionNone          Progression = "none"
	ProgressionPersistentLow Progression = "persistent_low"
	ProgressionAnxietyRisk   Progression = "anxiety_risk"
)

const (
	patternMinHistory = 4
	patternWindow     = 5
	patternThreshold  = 4

	intensityMinHistory = 3
	intensityThreshold  = 3

	progressionMinHistory = 5
	progressionWindow     = 6
	progressionThreshold  = 5
)

// DetectPattern checks the last five labels; sadness outranks anger, anger outranks fear.
func DetectPattern(history []Label) Pattern {
	if len(history) < patternMinHistory {
		return PatternNone
	}

	recent := tail(history, patternWindow)
	switch {
	case count(recent, Sadness) >= patternThreshold:
		return PatternPersistentSadness
	case count(recent, Anger) >= patternThreshold:
		return PatternEmotionalDistress
	case count(recent, Fear) >= patternThreshold:
		return PatternAnxiety
	default:
		return PatternNone
	}
}

// EstimateIntensity counts the most recent label across the whole history.
// A repeated neutral reads as high; callers rely on that.
func EstimateIntensity(history []Label) Intensity {
	if len(history) < intensityMinHistory {
		return IntensityLow
	}

	last := history[len(history)-1]
	if count(history, last) >= intensityThreshold {
		return IntensityHigh
	}
	return IntensityMedium
}

// DetectProgression only fires while the user is still sad: the newest label
// must be sadness before the six-entry window is counted.
func DetectProgression(history []Label) Progression {
	if len(history) < progressionMinHistory {
		return ProgressionNone
	}

	recent := tail(history, progressionWindow)
	if recent[len(recent)-1] != Sadness {
		return ProgressionNone
	}

	switch {
	case count(recent, Sadness) >= progressionThreshold:
		return ProgressionPersistentLow
	case count(recent, Fear) >= progressionThreshold:
		return ProgressionAnxietyRisk
	default:
		return ProgressionNone
	}
}

func tail(history []Label, n int) []Label {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func count(labels []Label, target Label) int {
	n := 0
	for _, l := range labels {
		if l.Normalize() == target {
			n++
		}
	}
	return n
}
