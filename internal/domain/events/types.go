// Package events defines in-process domain events
package events

import "time"

// EventType identifies an event kind
type EventType string

// Inbox file events
const (
	InboxFileReady   EventType = "inbox.file.ready"
	InboxFileRemoved EventType = "inbox.file.removed"
)

// Event is implemented by every domain event
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// InboxFileEvent reports a file that settled in a tenant's inbox directory
type InboxFileEvent struct {
	EventType EventType
	TenantID  string
	FilePath  string
	FileSize  int64
	EventTime time.Time
}

// Type implements Event
func (e *InboxFileEvent) Type() EventType { return e.EventType }

// Timestamp implements Event
func (e *InboxFileEvent) Timestamp() time.Time { return e.EventTime }
