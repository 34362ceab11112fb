// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("pulse")
	b := NewCollector("pulse")

	a.AnswersSubmitted.WithLabelValues("mcq").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.AnswersSubmitted.WithLabelValues("mcq")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AnswersSubmitted.WithLabelValues("mcq")))
}

func TestObserveRequest(t *testing.T) {
	c := NewCollector("pulse")
	c.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestTimeRecompute(t *testing.T) {
	c := NewCollector("pulse")
	done := c.TimeRecompute("cards")
	done()

	assert.Equal(t, 1, testutil.CollectAndCount(c.RecomputeDuration))
}

func TestHandler(t *testing.T) {
	c := NewCollector("pulse")
	c.OverlapFallbacks.Add(3)
	c.SynthesisRequests.WithLabelValues("ok").Inc()

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pulse_layout_overlap_fallbacks_total 3")
	assert.Contains(t, string(body), `pulse_synthesis_requests_total{outcome="ok"} 1`)
}
