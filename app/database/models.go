package database

import "time"

// SyncState is the persisted sync cursor: the watermark below which all
// articles are assumed synced, the pagination resume point, and the bounded
// recent-id dedup window. A single row exists per database.
type SyncState struct {
	LastSyncTime       int64 // unix milliseconds watermark
	LastCardID         string
	LastCardUpdateTime string
	Syncing            bool
	RecentIDs          []string // insertion order, most recent last
	UpdatedAt          time.Time
}
