package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func labels(raw ...Label) []Label { return raw }

func TestDetectPatternGuard(t *testing.T) {
	assert.Equal(t, PatternNone, DetectPattern(nil))
	assert.Equal(t, PatternNone, DetectPattern(labels(Sadness, Sadness, Sadness)))
	assert.Equal(t, PatternNone, DetectPattern(labels(Anger, Anger, Anger)))
}

func TestDetectPatternPriority(t *testing.T) {
	history := labels(Sadness, Anger, Sadness, Sadness, Sadness)
	assert.Equal(t, PatternPersistentSadness, DetectPattern(history))
}

func TestDetectPatternUsesLastFive(t *testing.T) {
	cases := []struct {
		name    string
		history []Label
		want    Pattern
	}{
		{name: "four of four sadness", history: labels(Sadness, Sadness, Sadness, Sadness), want: PatternPersistentSadness},
		{name: "anger run", history: labels(Joy, Anger, Anger, Anger, Anger), want: PatternEmotionalDistress},
		{name: "fear run", history: labels(Fear, Fear, Neutral, Fear, Fear), want: PatternAnxiety},
		{name: "old sadness outside window", history: labels(Sadness, Sadness, Sadness, Sadness, Joy, Joy, Joy, Sadness), want: PatternNone},
		{name: "mixed", history: labels(Fear, Anger, Fear, Anger, Fear), want: PatternNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectPattern(tc.history))
		})
	}
}

func TestEstimateIntensity(t *testing.T) {
	assert.Equal(t, IntensityLow, EstimateIntensity(nil))
	assert.Equal(t, IntensityLow, EstimateIntensity(labels(Fear)))
	assert.Equal(t, IntensityLow, EstimateIntensity(labels(Fear, Fear)))
	assert.Equal(t, IntensityHigh, EstimateIntensity(labels(Joy, Joy, Joy)))
	assert.Equal(t, IntensityMedium, EstimateIntensity(labels(Joy, Joy, Fear)))
	// repetitions anywhere in history count, not only consecutive ones
	assert.Equal(t, IntensityHigh, EstimateIntensity(labels(Anger, Joy, Anger, Fear, Anger)))
	// repeated neutral reads as high
	assert.Equal(t, IntensityHigh, EstimateIntensity(labels(Neutral, Neutral, Neutral)))
}

func TestDetectProgressionGate(t *testing.T) {
	history := labels(Sadness, Sadness, Sadness, Sadness, Sadness, Joy)
	assert.Equal(t, ProgressionNone, DetectProgression(history))

	history = labels(Sadness, Sadness, Sadness, Sadness, Sadness, Sadness, Neutral)
	assert.Equal(t, ProgressionNone, DetectProgression(history))
}

func TestDetectProgressionPersistentLow(t *testing.T) {
	assert.Equal(t, ProgressionNone, DetectProgression(labels(Sadness, Sadness, Sadness, Sadness)))
	assert.Equal(t, ProgressionPersistentLow, DetectProgression(labels(Sadness, Sadness, Sadness, Sadness, Sadness)))
	assert.Equal(t, ProgressionPersistentLow, DetectProgression(labels(Joy, Sadness, Sadness, Sadness, Sadness, Sadness)))
	assert.Equal(t, ProgressionNone, DetectProgression(labels(Joy, Joy, Sadness, Sadness, Sadness, Sadness)))
}

// Known quirk: the sadness gate means anxiety_risk only fires when five fears
// are followed by a sadness; a run of pure fear never reaches the counters.
func TestDetectProgressionAnxietyRiskQuirk(t *testing.T) {
	history := labels(Fear, Fear, Fear, Fear, Fear, Sadness)
	assert.Equal(t, ProgressionAnxietyRisk, DetectProgression(history))

	history = labels(Fear, Fear, Fear, Fear, Fear, Fear)
	assert.Equal(t, ProgressionNone, DetectProgression(history))
}

// Pattern and progression deliberately disagree on the same history.
func TestPatternAndProgressionDiverge(t *testing.T) {
	history := labels(Sadness, Sadness, Sadness, Sadness, Joy)
	assert.Equal(t, PatternPersistentSadness, DetectPattern(history))
	assert.Equal(t, ProgressionNone, DetectProgression(history))
}

func TestDetectorsDoNotMutateHistory(t *testing.T) {
	history := labels(Sadness, Fear, Sadness, Sadness, Sadness, Sadness)
	before := append([]Label(nil), history...)

	DetectPattern(history)
	EstimateIntensity(history)
	DetectProgression(history)

	assert.Equal(t, before, history)
}
