package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period         string            `json:"period"`
	EventCounts    map[EventType]int `json:"event_counts"`
	Adds           int               `json:"adds"`
	Updates        int               `json:"updates"`
	Deletes        int               `json:"deletes"`
	Completions    int               `json:"completions"`
	Reopens        int               `json:"reopens"`
	SaveFailures   int               `json:"save_failures"`
	LoadFailures   int               `json:"load_failures"`
	CompletionRate float64           `json:"completion_rate"`
	AddsByCategory map[string]int    `json:"adds_by_category"`
}

// CalculateStats folds events into usage stats for the period since the
// given time.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:         since.Format("2006-01-02"),
		EventCounts:    make(map[EventType]int),
		AddsByCategory: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskAdded:
			stats.Adds++
			if category, ok := metadata["category"].(string); ok {
				stats.AddsByCategory[category]++
			}
		case EventTaskUpdated:
			stats.Updates++
		case EventTaskDeleted:
			stats.Deletes++
		case EventTaskCompleted:
			stats.Completions++
		case EventTaskReopened:
			stats.Reopens++
		case EventSaveFailed:
			stats.SaveFailures++
		case EventLoadFailed:
			stats.LoadFailures++
		}
	}

	if stats.Adds > 0 {
		stats.CompletionRate = float64(stats.Completions) / float64(stats.Adds)
	}

	return stats, nil
}
