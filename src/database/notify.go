package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"socialdex/src/utils/errors"
)

const ObservationsChannel = "observations"

// ObservationEvent announces that a batch of observations landed.
// Resync is set after the listener reconnected, when notifications may have been missed.
type ObservationEvent struct {
	RecordedAt time.Time
	Resync     bool
}

// NotificationManager fans postgres notifications on the observations channel
// out to in-process subscribers.
type NotificationManager struct {
	listener    *pq.Listener
	subscribers map[string]chan ObservationEvent // subscriberID -> chan
	mu          sync.RWMutex
}

func NewNotificationManager(db *gorm.DB) (*NotificationManager, error) {
	dialector, ok := db.Config.Dialector.(*postgres.Dialector)
	if !ok {
		return nil, errors.New("notifications require the postgres driver")
	}

	nm := newNotificationManager()
	nm.listener = pq.NewListener(dialector.DSN, 10*time.Second, time.Minute, logListenerEvent)
	if err := nm.listener.Listen(ObservationsChannel); err != nil {
		_ = nm.listener.Close()
		return nil, errors.Wrapf(err, "failed to listen on channel %s", ObservationsChannel)
	}

	go nm.listen()

	return nm, nil
}

func newNotificationManager() *NotificationManager {
	return &NotificationManager{subscribers: make(map[string]chan ObservationEvent)}
}

func logListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		slog.Info("Notification listener connected", "channel", ObservationsChannel)
	case pq.ListenerEventReconnected:
		slog.Info("Notification listener reconnected", "channel", ObservationsChannel)
	case pq.ListenerEventDisconnected:
		slog.Warn("Notification listener disconnected", "error", err)
	case pq.ListenerEventConnectionAttemptFailed:
		slog.Warn("Notification listener connection attempt failed", "error", err)
	}
}

func (nm *NotificationManager) listen() {
	for notification := range nm.listener.Notify {
		// pq delivers nil once the connection is re-established
		if notification == nil {
			nm.broadcast(ObservationEvent{RecordedAt: time.Now().UTC(), Resync: true})
			continue
		}
		if notification.Channel != ObservationsChannel {
			continue
		}
		event, err := parseObservationPayload(notification.Extra)
		if err != nil {
			slog.Error("Invalid observation notification", "payload", notification.Extra, "error", err)
			continue
		}
		nm.broadcast(event)
	}
}

func parseObservationPayload(payload string) (ObservationEvent, error) {
	recordedAt, err := time.Parse(time.RFC3339, payload)
	if err != nil {
		return ObservationEvent{}, errors.Wrapf(err, "bad recorded_at %q", payload)
	}
	return ObservationEvent{RecordedAt: recordedAt}, nil
}

func (nm *NotificationManager) broadcast(event ObservationEvent) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	for subscriberID, ch := range nm.subscribers {
		select {
		case ch <- event:
		default:
			// the subscriber still has an undelivered event that triggers the same rebuild
			slog.Debug("Subscriber busy, dropping observation event", "subscriberID", subscriberID)
		}
	}
}

// Subscribe returns a channel of observation events. It is closed when ctx
// ends or the manager closes.
func (nm *NotificationManager) Subscribe(ctx context.Context) <-chan ObservationEvent {
	subscriberID := uuid.New().String()
	ch := make(chan ObservationEvent, 1)

	nm.mu.Lock()
	nm.subscribers[subscriberID] = ch
	nm.mu.Unlock()
	slog.Info("Subscribed to observation notifications", "subscriberID", subscriberID)

	go func() {
		<-ctx.Done()
		nm.unsubscribe(subscriberID)
	}()
	return ch
}

func (nm *NotificationManager) unsubscribe(subscriberID string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	if ch, ok := nm.subscribers[subscriberID]; ok {
		close(ch)
		delete(nm.subscribers, subscriberID)
	}
}

func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	for subscriberID, ch := range nm.subscribers {
		close(ch)
		delete(nm.subscribers, subscriberID)
	}
	nm.mu.Unlock()

	if nm.listener == nil {
		return nil
	}
	if err := nm.listener.UnlistenAll(); err != nil {
		slog.Warn("Failed to unlisten", "error", err)
	}
	return nm.listener.Close()
}

// Notify sends payload on a postgres notification channel.
func Notify(db *gorm.DB, channel string, payload string) error {
	if err := db.Exec("SELECT pg_notify(?, ?)", channel, payload).Error; err != nil {
		return errors.Wrapf(err, "failed to notify channel %s", channel)
	}
	return nil
}
