package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"socialdex/src/datamodels"
)

const wsWriteTimeout = 5 * time.Second

// IndexUpdate is the message pushed to live clients after each build.
type IndexUpdate struct {
	RunId     string                              `json:"run_id"`
	BuiltAt   time.Time                           `json:"built_at"`
	Series    map[string][]datamodels.SeriesPoint `json:"series"`
	Summaries map[string]datamodels.IndexSummary  `json:"summaries"`
}

func NewIndexUpdate(result *datamodels.IndexResult) IndexUpdate {
	return IndexUpdate{
		RunId:     result.RunId,
		BuiltAt:   result.BuiltAt,
		Series:    result.SeriesByName(),
		Summaries: SummarizeAll(result),
	}
}

type WebsocketIndexWriter struct {
	clients map[*websocket.Conn]bool
	last    *IndexUpdate
	mu      sync.Mutex
}

func NewWebsocketIndexWriter() *WebsocketIndexWriter {
	return &WebsocketIndexWriter{
		clients: make(map[*websocket.Conn]bool),
	}
}

// AddClient registers a connection and sends it the latest update, if any.
func (w *WebsocketIndexWriter) AddClient(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[conn] = true
	if w.last != nil {
		if err := w.send(conn, w.last); err != nil {
			slog.Warn("Failed to send latest indices to new client", "error", err)
			w.drop(conn)
		}
	}
}

func (w *WebsocketIndexWriter) RemoveClient(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

func (w *WebsocketIndexWriter) ClientCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// Write broadcasts to every client. Clients that fail are dropped, not reported.
func (w *WebsocketIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	update := NewIndexUpdate(result)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = &update

	for client := range w.clients {
		if err := w.send(client, &update); err != nil {
			slog.Warn("Dropping websocket client", "remote", client.RemoteAddr().String(), "error", err)
			w.drop(client)
		}
	}
	return nil
}

// Reply writes a direct response to one client, serialized with broadcasts.
func (w *WebsocketIndexWriter) Reply(conn *websocket.Conn, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (w *WebsocketIndexWriter) send(conn *websocket.Conn, update *IndexUpdate) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(update)
}

func (w *WebsocketIndexWriter) drop(conn *websocket.Conn) {
	conn.Close()
	delete(w.clients, conn)
}

func (w *WebsocketIndexWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for client := range w.clients {
		w.drop(client)
	}
	return nil
}
