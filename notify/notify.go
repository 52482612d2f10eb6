// Package notify delivers user-facing notifications from the core to whatever
// presentation layer is attached. The gateway and stores never render
// anything themselves: the core publishes, the application root subscribes
// and decides how to display each message.
//
// It also carries the session-expiry signal. When the gateway sees a 401 it
// does not reach into navigation; it publishes the signal and lets the
// application root react (clear state, prompt for login again).
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification for display purposes.
type Level string

const (
	// LevelSuccess marks a completed operation.
	LevelSuccess Level = "success"
	// LevelError marks a failed operation.
	LevelError Level = "error"
	// LevelInfo marks a neutral message.
	LevelInfo Level = "info"
)

// Notification is a single user-facing message.
type Notification struct {
	ID      string
	Level   Level
	Message string
	Time    time.Time
}

// Success publishes a success-level notification.
func (n *Notifier) Success(message string) {
	n.publish(Notification{ID: uuid.New().String(), Level: LevelSuccess, Message: message, Time: time.Now()})
}

// Error publishes an error-level notification.
func (n *Notifier) Error(message string) {
	n.publish(Notification{ID: uuid.New().String(), Level: LevelError, Message: message, Time: time.Now()})
}

// Info publishes an info-level notification.
func (n *Notifier) Info(message string) {
	n.publish(Notification{ID: uuid.New().String(), Level: LevelInfo, Message: message, Time: time.Now()})
}
