package database

// StateRepository persists the sync cursor. Load returns the single state
// row with its recent-id window; Save replaces both atomically so the
// checkpoint never advances piecemeal.
type StateRepository interface {
	Load() (*SyncState, error)
	Save(state *SyncState) error
	SetSyncing(syncing bool) error
}
