package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"socialdex/src/metrics"
	"socialdex/src/utils/general"
	"socialdex/src/version"
)

// @title SocialDex API
// @version 1.0
// @description Follower-count indices built from tracked social media authors
// @host localhost:8080
// @BasePath /

// ClientMessageType tells the server how to read a websocket frame from a client
type ClientMessageType string

const (
	CommandMessage ClientMessageType = "command"
)

// ClientMessage is one frame sent by a websocket client
type ClientMessage struct {
	Type    ClientMessageType `json:"type" example:"command" enums:"command"`
	Payload json.RawMessage   `json:"payload" swaggertype:"object"`
}

// ServerReply answers a ClientMessage. Index pushes arrive as metrics.IndexUpdate frames.
type ServerReply struct {
	Ok    bool   `json:"ok" example:"true"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty" example:"unknown action explode"`
}

type IndexAction string

const (
	RefreshAction IndexAction = "refresh"
	LatestAction  IndexAction = "latest"
)

// IndexCommand asks for a rebuild (refresh) or for the cached result (latest)
type IndexCommand struct {
	Action IndexAction `json:"action" example:"refresh" enums:"refresh,latest"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	LastRunId string            `json:"last_run_id,omitempty"`
	Build     map[string]string `json:"build"`
	System    map[string]string `json:"system"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// RegisterHealthCheck registers the health check endpoint
// @Summary Health check endpoint
// @Description Returns health status and build info of the SocialDex service
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) RegisterHealthCheck() {
	s.httpMux.HandleFunc(s.healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{Status: "ok", Build: version.GetBuildInfo(), System: general.GetSystemUsage()}
		if latest := s.Latest(); latest != nil {
			response.LastRunId = latest.RunId
		}
		writeJSON(w, http.StatusOK, response)
	})
}

// RegisterIndicesHandler registers the indices endpoint
// @Summary Latest index series
// @Description Returns every index series and its summary. refresh=true forces a rebuild.
// @Tags indices
// @Produce json
// @Param refresh query bool false "Rebuild before answering"
// @Success 200 {object} metrics.IndexUpdate
// @Failure 500 {object} ServerReply
// @Router /indices [get]
func (s *Server) RegisterIndicesHandler() {
	s.httpMux.HandleFunc("/indices", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		result := s.Latest()
		if result == nil || r.URL.Query().Get("refresh") == "true" {
			rebuilt, err := s.Rebuild(r.Context())
			if err != nil {
				slog.Error("Failed to build indices", "error", err)
				writeJSON(w, http.StatusInternalServerError, ServerReply{Error: err.Error()})
				return
			}
			result = rebuilt
		}
		writeJSON(w, http.StatusOK, metrics.NewIndexUpdate(result))
	})
}

// RegisterWebSocketHandler registers the WebSocket endpoint
// @Summary WebSocket connection endpoint
// @Description Pushes every rebuilt index set to connected clients
// @Tags websocket
// @Accept json
// @Produce json
// @Success 101 {string} string "Switching protocols to websocket"
// @Router /ws [get]
func (s *Server) RegisterWebSocketHandler() {
	s.httpMux.HandleFunc("/ws", s.handleWebSocket)
}

// RegisterSwagger registers the Swagger documentation endpoint
// @Summary Swagger documentation endpoint
// @Description Serves the Swagger UI and the generated OpenAPI document
// @Tags docs
// @Produce json,html
// @Success 200 {string} string "Swagger documentation UI"
// @Router /swagger [get]
func (s *Server) RegisterSwagger() {
	s.httpMux.HandleFunc("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// RegisterMetrics exposes the Prometheus registry
func (s *Server) RegisterMetrics() {
	s.httpMux.Handle(s.metricsEndpoint, promhttp.Handler())
}

// handleCommand runs one IndexCommand sent over a websocket
// @Description Runs an index command sent over the websocket connection
// @Accept json
// @Produce json
// @Param payload body IndexCommand true "Command payload"
// @Success 200 {object} ServerReply
// @Failure 400 {object} ServerReply
func (s *Server) handleCommand(ctx context.Context, payload []byte) ServerReply {
	var command IndexCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		slog.Warn("Bad command payload", "error", err)
		return ServerReply{Error: err.Error()}
	}

	switch command.Action {
	case RefreshAction:
		result, err := s.Rebuild(ctx)
		if err != nil {
			return ServerReply{Error: err.Error()}
		}
		return ServerReply{Ok: true, Data: map[string]string{"run_id": result.RunId}}
	case LatestAction:
		latest := s.Latest()
		if latest == nil {
			return ServerReply{Error: "no index run yet"}
		}
		return ServerReply{Ok: true, Data: metrics.NewIndexUpdate(latest)}
	default:
		return ServerReply{Error: "unknown action " + string(command.Action)}
	}
}
