package event_bus

import "time"

const FeedLoadedEvent EventType = "feed.loaded"

// FeedLoaded is published after a new schedule snapshot replaced the previous one.
type FeedLoaded struct {
	Source   string
	Days     int
	Months   int
	LoadedAt time.Time
}
