package dashboard

import "time"

// Severity selects a notification's icon and accent color.
type Severity int

// Notification severities.
const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notification is one message shown in the shared banner.
type Notification struct {
	ID       uint64
	Severity Severity
	Title    string
	Message  string
	ShownAt  time.Time
}

// Notifier owns the single notification banner. Showing a notification
// replaces whatever is visible; each one expires on its own timer, and an
// expiry only hides the banner if it belongs to the notification still shown.
type Notifier struct {
	seq     uint64
	current *Notification
}

// Show replaces the banner content and returns the new notification's ID,
// which the caller passes to Expire when its timer fires.
func (n *Notifier) Show(sev Severity, title, message string, now time.Time) uint64 {
	n.seq++
	n.current = &Notification{
		ID:       n.seq,
		Severity: sev,
		Title:    title,
		Message:  message,
		ShownAt:  now,
	}
	return n.seq
}

// Expire hides the banner if id is the notification currently shown.
// It reports whether anything was hidden.
func (n *Notifier) Expire(id uint64) bool {
	if n.current == nil || n.current.ID != id {
		return false
	}
	n.current = nil
	return true
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}
