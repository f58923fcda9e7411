// Package notify shows controller messages and track changes as desktop
// notifications (freedesktop.org Notifications over D-Bus).
package notify

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string // file path or icon name
	Timeout    int32  // ms; -1 server default, 0 never expires
	ReplacesID uint32 // id of a notification to update in place
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns the server-assigned id.
	Notify(n Notification) (uint32, error)
	// Close withdraws the notification with the given id.
	Close(id uint32) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Notification) (uint32, error) { return 0, nil }
func (Nop) Close(uint32) error                  { return nil }
