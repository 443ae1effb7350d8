package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

func TestObserver_CountsEngineActivity(t *testing.T) {
	o := NewObserver()
	e, err := timeline.NewEngine(narrative.MustCanonical(), narrative.DefaultPalette, timeline.WithObserver(o))
	require.NoError(t, err)

	_, err = e.ApplyChoice(timeline.RootID, "create")
	require.NoError(t, err)
	_, err = e.ApplyChoice("timeline-gone", "create")
	require.Error(t, err)
	_, err = e.ApplyChoice(timeline.RootID, "refuse")
	require.Error(t, err)
	e.Reset()

	assert.Equal(t, 1.0, testutil.ToFloat64(o.transitions.WithLabelValues("advance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.transitions.WithLabelValues("spawn")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.transitions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.transitions.WithLabelValues("reset")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.rejections.WithLabelValues(string(apperrors.CodeNotFound))))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.rejections.WithLabelValues(string(apperrors.CodeInvalidArgument))))
}

func TestObserver_Handler(t *testing.T) {
	o := NewObserver()
	o.ObserveTransition(timeline.TransitionEvent{Kind: timeline.EventAdvance, Timelines: 2})

	rr := httptest.NewRecorder()
	o.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `quantum_transitions_total{kind="advance"} 1`)
	assert.Contains(t, string(body), "quantum_session_timelines_count 1")
}
