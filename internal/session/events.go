package session

import "github.com/JeevithaAnandhan/marksheetpro/internal/domain"

// Event is published to subscribers: StateChanged, Notice or HistoryRefreshed.
type Event interface{ isEvent() }

// StateChanged carries a snapshot taken after a transition.
type StateChanged struct {
	From    State
	To      State
	Session Session
}

// NoticeLevel grades a user-facing notification.
type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelSuccess NoticeLevel = "success"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a message the presentation layer should surface.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// HistoryRefreshed reports the outcome of a background history reload.
type HistoryRefreshed struct {
	Entries []domain.HistoryEntry
	Err     error
}

func (StateChanged) isEvent()     {}
func (Notice) isEvent()           {}
func (HistoryRefreshed) isEvent() {}

// EventHandler receives controller events. Handlers run on the goroutine that
// caused the event; HistoryRefreshed arrives from a background goroutine.
type EventHandler func(Event)
