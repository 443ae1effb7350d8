package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/awmpietro/quantum-dilemma/internal/config"
)

func TestShutdown_FlushesBufferedTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	h, obs, err := newHandler(config.Runtime{CacheMaxItems: 4, ObsBuffer: 16}, log)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayV2HTTPRequest{
		RouteKey: "POST /session/choice",
		Body:     `{"timelines":[{"id":"timeline-0","history":[],"dilemma_id":"start","depth":0,"color":"#8A2BE2"}],"timeline_id":"timeline-0","choice_id":"create"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	shutdown(obs, log)()

	kinds := map[string]bool{}
	for _, entry := range logs.FilterMessage("timeline transition").All() {
		kinds[entry.ContextMap()["kind"].(string)] = true
	}
	assert.True(t, kinds["advance"], "advance event not flushed")
	assert.True(t, kinds["spawn"], "spawn event not flushed")
}

func TestNewHandler_RejectsMissingNarrative(t *testing.T) {
	_, _, err := newHandler(config.Runtime{CacheMaxItems: 4, ObsBuffer: 16, NarrativePath: "does-not-exist.dot"}, zap.NewNop())
	assert.Error(t, err)
}
