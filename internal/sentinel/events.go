package sentinel

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileEvent is a change under the project root. Path is slash separated and
// relative to the root.
type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

func eventType(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Write):
		return EventModify, true
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	}
	return 0, false
}

// destructive reports whether any event in the batch removed something.
func destructive(events []FileEvent) bool {
	for _, e := range events {
		if e.Type == EventDelete || e.Type == EventRename {
			return true
		}
	}
	return false
}
