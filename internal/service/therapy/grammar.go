package therapy

import (
	"strings"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
)

// Branch names the decision-list arm that produced a reply.
type Branch string

const (
	BranchJoy            Branch = "joy"
	BranchHolding        Branch = "holding"
	BranchReassurance    Branch = "reassurance"
	BranchPacing         Branch = "pacing"
	BranchShortSupport   Branch = "short_support"
	BranchMediumQuestion Branch = "medium_question"
	BranchDeepQuestion   Branch = "deep_question"
	BranchClassic        Branch = "classic"
)

// pacingProbability is the chance a reply stops after the psychological line.
const pacingProbability = 0.25

// Grammar 根据情绪、模式、进展与强度从短语库中组合回复。
type Grammar struct {
	rnd Random
}

// NewGrammar builds a grammar drawing every choice from rnd.
func NewGrammar(rnd Random) *Grammar {
	if rnd == nil {
		rnd = NewClockRandom()
	}
	return &Grammar{rnd: rnd}
}

// Compose returns one reply for the current emotional state.
func (g *Grammar) Compose(label emotion.Label, pattern emotion.Pattern, progression emotion.Progression, intensity emotion.Intensity) string {
	reply, _ := g.compose(label, pattern, progression, intensity)
	return reply
}

func (g *Grammar) compose(label emotion.Label, pattern emotion.Pattern, progression emotion.Progression, intensity emotion.Intensity) (string, Branch) {
	label = label.Normalize()

	// joy short-circuits everything else
	if label == emotion.Joy {
		return g.pick(joyAffirmations), BranchJoy
	}

	line := g.psychologicalLine(label, pattern)

	switch progression {
	case emotion.ProgressionPersistentLow:
		return g.pick(holdingLines), BranchHolding
	case emotion.ProgressionAnxietyRisk:
		return line + anxietyReassurance, BranchReassurance
	}

	if g.rnd.Float64() < pacingProbability {
		return line, BranchPacing
	}

	switch intensity {
	case emotion.IntensityHigh:
		return line + " " + g.pick(deepQuestions), BranchDeepQuestion
	case emotion.IntensityMedium:
		return line + " " + g.pick(mediumQuestions), BranchMediumQuestion
	default:
		return line + " " + g.pick(shortSupport), BranchShortSupport
	}
}

func (g *Grammar) psychologicalLine(label emotion.Label, pattern emotion.Pattern) string {
	bank, ok := emotionLines[label]
	if !ok {
		bank = emotionLines[emotion.Neutral]
	}
	return g.pick(bank) + patternSuffixes[pattern]
}

// ComposeClassic builds the acknowledgement / reflection / question / support
// reply, adding a memory line when a recurring theme was found.
func (g *Grammar) ComposeClassic(label emotion.Label, theme Theme) string {
	bank, ok := acknowledgements[label.Normalize()]
	if !ok {
		bank = acknowledgements[emotion.Neutral]
	}

	parts := []string{g.pick(bank)}
	if memory, ok := themeLines[theme]; ok {
		parts = append(parts, memory)
	}
	parts = append(parts,
		g.pick(reflections),
		g.pick(questions),
		g.pick(supportLines),
	)
	return strings.Join(parts, " ")
}

func (g *Grammar) pick(bank []string) string {
	return bank[g.rnd.Intn(len(bank))]
}
