package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/diccas/internal/vrt"
)

func TestHandlerExposesInstruments(t *testing.T) {
	m := New()
	m.ObserveConversion("completed", 2*time.Second)
	m.ObserveResult(vrt.Stats{
		Paragraphs: 3,
		Sentences:  4,
		Tokens:     50,
		Divisions:  map[string]int{"book": 1, "chapter": 2},
		Recovered:  true,
	})
	m.ObserveTagger(10*time.Millisecond, nil)
	m.ObserveTagger(10*time.Millisecond, errors.New("x"))
	m.SetQueueDepth(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `diccas_conversions_total{status="completed"} 1`)
	assert.Contains(t, out, "diccas_tokens_total 50")
	assert.Contains(t, out, `diccas_structures_total{type="chapter"} 2`)
	assert.Contains(t, out, "diccas_recovered_parses_total 1")
	assert.Contains(t, out, `diccas_tagger_request_duration_seconds_count{status="error"} 1`)
	assert.Contains(t, out, "diccas_queue_depth 7")
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.SetQueueDepth(1)
	assert.NotSame(t, a.Registry(), b.Registry())
}
