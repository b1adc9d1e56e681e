package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/viridian/backend/internal/analysis/emotion"
	"github.com/zhouzirui/viridian/backend/internal/service/therapy"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorderCountsTurns(t *testing.T) {
	r := NewRecorder()

	r.ObserveTurn(therapy.Turn{
		Emotion: emotion.Sadness,
		Branch:  therapy.BranchHolding,
		State: therapy.State{
			Pattern:     emotion.PatternPersistentSadness,
			Progression: emotion.ProgressionPersistentLow,
		},
	})
	r.ObserveTurn(therapy.Turn{
		Emotion: emotion.Sadness,
		Branch:  therapy.BranchShortSupport,
		State:   therapy.State{Pattern: emotion.PatternNone, Progression: emotion.ProgressionNone},
	})
	r.ObserveClassification("fallback")
	r.SessionStarted()
	r.SummaryGenerated()

	body := scrape(t, r)
	assert.Contains(t, body, `viridian_turns_total{emotion="sadness"} 2`)
	assert.Contains(t, body, `viridian_reply_branches_total{branch="holding"} 1`)
	assert.Contains(t, body, `viridian_patterns_detected_total{pattern="persistent_sadness"} 1`)
	assert.Contains(t, body, `viridian_progressions_detected_total{progression="persistent_low"} 1`)
	assert.NotContains(t, body, `pattern="none"`)
	assert.Contains(t, body, `viridian_classifications_total{source="fallback"} 1`)
	assert.Contains(t, body, "viridian_sessions_started_total 1")
	assert.Contains(t, body, "viridian_summaries_generated_total 1")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveTurn(therapy.Turn{Emotion: emotion.Joy})
		r.SessionStarted()
		r.SummaryGenerated()
		r.ObserveClassification("llm")
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
