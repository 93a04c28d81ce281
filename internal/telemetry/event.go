package telemetry

import "time"

type EventType string

const (
	EventTaskAdded     EventType = "task_added"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskDeleted   EventType = "task_deleted"
	EventTaskCompleted EventType = "task_completed"
	EventTaskReopened  EventType = "task_reopened"
	EventSaveFailed    EventType = "save_failed"
	EventLoadFailed    EventType = "load_failed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
