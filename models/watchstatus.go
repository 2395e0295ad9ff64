package models

import "fmt"

// WatchStatus is the tri-state watch progress value kept per (profile, item).
type WatchStatus string

const (
	NotWatched WatchStatus = "NOT_WATCHED"
	Watching   WatchStatus = "WATCHING"
	Watched    WatchStatus = "WATCHED"
)

// ParseWatchStatus validates a client-supplied status string.
func ParseWatchStatus(s string) (WatchStatus, error) {
	switch WatchStatus(s) {
	case NotWatched, Watching, Watched:
		return WatchStatus(s), nil
	}
	return "", fmt.Errorf("invalid watch status %q", s)
}
