package console

import (
	"context"
	"sync"
	"time"
)

// Level of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message shown after an action
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotificationLog keeps the most recent notifications until drained
type NotificationLog struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

// NewNotificationLog keeps at most limit notifications
func NewNotificationLog(limit int) *NotificationLog {
	if limit <= 0 {
		limit = 50
	}
	return &NotificationLog{limit: limit}
}

// Notify appends n, dropping the oldest entry when full
func (l *NotificationLog) Notify(_ context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if len(l.items) > l.limit {
		l.items = l.items[len(l.items)-l.limit:]
	}
}

// Drain returns and forgets every pending notification
func (l *NotificationLog) Drain() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items
	l.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg}
}

func failure(msg string) Notification {
	return Notification{Level: LevelError, Message: msg}
}
