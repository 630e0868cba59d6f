//go:build unit

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdex/src/datamodels"
	"socialdex/src/metrics"
	"socialdex/src/utils/errors"
)

type fakeIndexSource struct {
	builds atomic.Int32
	err    error
}

func (f *fakeIndexSource) BuildAll(ctx context.Context) (*datamodels.IndexResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.builds.Add(1)
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &datamodels.IndexResult{
		RunId:      fmt.Sprintf("run-%d", n),
		BuiltAt:    t1,
		QueryTimes: []time.Time{t1},
		Indices: map[string]datamodels.IndexSeries{
			"finance": {Name: "finance", Points: []datamodels.SeriesPoint{{Time: t1, Value: 1.5}}},
		},
	}, nil
}

func newTestServer(t *testing.T, source IndexSource) *httptest.Server {
	t.Helper()
	handler, err := NewServer(":0").
		WithIndexSource(source).
		WithWebsocketWriter(metrics.NewWebsocketIndexWriter()).
		Handler()
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestHandlerRequiresSource(t *testing.T) {
	_, err := NewServer(":0").Handler()
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t, &fakeIndexSource{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Contains(t, health.Build, "version")
	assert.Contains(t, health.System, "num_goroutine")
}

func TestIndicesEndpoint(t *testing.T) {
	source := &fakeIndexSource{}
	server := newTestServer(t, source)

	get := func(path string) metrics.IndexUpdate {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var update metrics.IndexUpdate
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
		return update
	}

	update := get("/indices")
	assert.Equal(t, "run-1", update.RunId)
	assert.Equal(t, 1.5, update.Series["finance"][0].Value)

	// cached until a refresh is asked for
	assert.Equal(t, "run-1", get("/indices").RunId)
	assert.Equal(t, "run-2", get("/indices?refresh=true").RunId)
}

func TestIndicesEndpointBuildFailure(t *testing.T) {
	server := newTestServer(t, &fakeIndexSource{err: errors.New("store unavailable")})

	resp, err := http.Get(server.URL + "/indices")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &fakeIndexSource{})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwaggerDocument(t *testing.T) {
	server := newTestServer(t, &fakeIndexSource{})

	resp, err := http.Get(server.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Info  map[string]any `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "SocialDex API", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/indices")
	assert.Contains(t, doc.Paths, "/health")
}

func TestWebSocketRefresh(t *testing.T) {
	server := newTestServer(t, &fakeIndexSource{})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	send := func(action string) ServerReply {
		require.NoError(t, conn.WriteJSON(ClientMessage{
			Type:    CommandMessage,
			Payload: json.RawMessage(`{"action":"` + action + `"}`),
		}))
		var reply ServerReply
		require.NoError(t, conn.ReadJSON(&reply))
		return reply
	}

	reply := send("latest")
	assert.False(t, reply.Ok)

	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type:    CommandMessage,
		Payload: json.RawMessage(`{"action":"refresh"}`),
	}))
	var update metrics.IndexUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "run-1", update.RunId)
	var refreshed ServerReply
	require.NoError(t, conn.ReadJSON(&refreshed))
	assert.True(t, refreshed.Ok)

	reply = send("latest")
	assert.True(t, reply.Ok)
	assert.Equal(t, "run-1", reply.Data.(map[string]any)["run_id"])

	reply = send("explode")
	assert.False(t, reply.Ok)
	assert.Contains(t, reply.Error, "explode")
}
