//go:generate swag init --generalInfo handlers.go --dir ./,../metrics,../datamodels --output ../docs --outputTypes go

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"socialdex/src/database"
	"socialdex/src/datamodels"
	_ "socialdex/src/docs"
	"socialdex/src/metrics"
	"socialdex/src/utils/errors"
)

// IndexSource produces a fresh build of every index.
type IndexSource interface {
	BuildAll(ctx context.Context) (*datamodels.IndexResult, error)
}

type Server struct {
	addr            string
	healthEndpoint  string
	metricsEndpoint string
	upgrader        websocket.Upgrader
	httpMux         *http.ServeMux
	source          IndexSource
	wsWriter        *metrics.WebsocketIndexWriter
	publisher       metrics.IndexWriter
	notifications   *database.NotificationManager
	latest          *datamodels.IndexResult
	rebuildMu       sync.Mutex
	mu              sync.RWMutex
}

func NewServer(addr string) *Server {
	return &Server{
		addr:            addr,
		healthEndpoint:  "/health",
		metricsEndpoint: "/metrics",
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all connections (for development purposes)
			},
		},
		httpMux: http.NewServeMux(),
	}
}

func (s *Server) WithEndpoints(healthEndpoint string, metricsEndpoint string) *Server {
	if healthEndpoint != "" {
		s.healthEndpoint = healthEndpoint
	}
	if metricsEndpoint != "" {
		s.metricsEndpoint = metricsEndpoint
	}
	return s
}

func (s *Server) WithIndexSource(source IndexSource) *Server {
	s.source = source
	return s
}

func (s *Server) WithWebsocketWriter(wsWriter *metrics.WebsocketIndexWriter) *Server {
	s.wsWriter = wsWriter
	return s
}

// WithPublisher sets where rebuilt results go. Without one they only reach websocket clients.
func (s *Server) WithPublisher(publisher metrics.IndexWriter) *Server {
	s.publisher = publisher
	return s
}

// WithNotifications rebuilds whenever the crawler reports new observations.
func (s *Server) WithNotifications(notifications *database.NotificationManager) *Server {
	s.notifications = notifications
	return s
}

// Handler registers every route once and returns the mux.
func (s *Server) Handler() (http.Handler, error) {
	if s.source == nil {
		return nil, errors.New("index source is nil")
	}
	if s.wsWriter == nil {
		return nil, errors.New("websocket writer is nil")
	}
	s.RegisterHealthCheck()
	s.RegisterIndicesHandler()
	s.RegisterWebSocketHandler()
	s.RegisterSwagger()
	s.RegisterMetrics()
	return s.httpMux, nil
}

func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if _, err := s.Rebuild(ctx); err != nil {
		slog.Error("Initial index build failed", "error", err)
	}
	if s.notifications != nil {
		go s.listenForObservations(ctx)
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("Failed to close server", "error", err)
		}
	}()

	slog.Info(fmt.Sprintf("Starting server on %s", s.addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Rebuild runs a full build and publishes it. Concurrent callers are serialized.
func (s *Server) Rebuild(ctx context.Context) (*datamodels.IndexResult, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	result, err := s.source.BuildAll(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	var writer metrics.IndexWriter = s.wsWriter
	if s.publisher != nil {
		writer = s.publisher
	}
	if err := writer.Write(ctx, result); err != nil {
		slog.Error("Failed to publish rebuilt indices", "run_id", result.RunId, "error", err)
	}
	return result, nil
}

func (s *Server) Latest() *datamodels.IndexResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) listenForObservations(ctx context.Context) {
	updates := s.notifications.Subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-updates:
			if !ok {
				return
			}
			// collapse a burst of notifications into one rebuild
			for drained := false; !drained; {
				select {
				case <-updates:
				default:
					drained = true
				}
			}
			slog.Info("New observations, rebuilding indices", "recorded_at", event.RecordedAt, "resync", event.Resync)
			if _, err := s.Rebuild(ctx); err != nil {
				slog.Error("Index rebuild failed", "error", err)
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	s.wsWriter.AddClient(conn)
	defer s.wsWriter.RemoveClient(conn)

	slog.Info("Client connected", "remote", conn.RemoteAddr().String())

	for {
		var message ClientMessage
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("Error reading message", "error", err)
			}
			return
		}

		switch message.Type {
		case CommandMessage:
			reply := s.handleCommand(r.Context(), message.Payload)
			if err := s.wsWriter.Reply(conn, reply); err != nil {
				slog.Error("Failed to send command reply", "error", err)
				return
			}
		default:
			slog.Warn("Ignoring websocket message", "type", message.Type)
		}
	}
}
