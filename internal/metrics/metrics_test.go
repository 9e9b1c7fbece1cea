package metrics

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistogram_Buckets(t *testing.T) {
	r := NewRegistry()
	h := r.NewHistogram("h", "help", []string{"op"}, []float64{0.1, 1})

	h.Observe(0.05, "a")
	h.Observe(0.5, "a")
	h.Observe(5, "a")
	assert.Equal(t, 3, h.Count("a"))

	var buf bytes.Buffer
	r.Write(&buf)
	out := buf.String()
	assert.Contains(t, out, `h_bucket{op="a",le="0.1"} 1`)
	assert.Contains(t, out, `h_bucket{op="a",le="1"} 2`)
	assert.Contains(t, out, `h_bucket{op="a",le="+Inf"} 3`)
	assert.Contains(t, out, `h_count{op="a"} 3`)
}

func TestCounterAndGauge(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("c", "help", []string{"k"})
	g := r.NewGauge("g", "help", nil)

	c.Inc("x,y")
	c.Add(2, "x,y")
	g.Set(7)

	assert.Equal(t, 3.0, c.Value("x,y"))
	assert.Equal(t, 7.0, g.Value())

	var buf bytes.Buffer
	r.Write(&buf)
	assert.Contains(t, buf.String(), `c{k="x,y"} 3`)
	assert.Contains(t, buf.String(), "g 7")
}

func TestRecorders(t *testing.T) {
	RecordTransition("AssignShift", true, time.Millisecond)
	RecordRecommendation(true, 1, 2, 3, 4)
	SetDraftGauges("test-draft", 5, 6, 50)

	r := GetRegistry()
	assert.GreaterOrEqual(t, r.GetCounter(transitions).Value("AssignShift", "success"), 1.0)
	assert.Equal(t, 4.0, r.GetGauge(bucketSize).Value("hard"))
	assert.Equal(t, 5.0, r.GetGauge(unfilledShifts).Value("test-draft"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "calldraft_transitions_total")
}
