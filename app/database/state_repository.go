package database

import (
	"fmt"
	"time"
)

var _ StateRepository = (*SQLStateRepository)(nil)

// SQLStateRepository stores the sync cursor in the sync_state and recent_ids
// tables.
type SQLStateRepository struct {
	db *DB
}

func NewStateRepository(db *DB) *SQLStateRepository {
	return &SQLStateRepository{db: db}
}

func (r *SQLStateRepository) Load() (*SyncState, error) {
	state := &SyncState{}
	var syncing int

	err := r.db.QueryRow(`
		SELECT last_sync_time, last_card_id, last_card_update_time, syncing, updated_at
		FROM sync_state WHERE id = 1
	`).Scan(&state.LastSyncTime, &state.LastCardID, &state.LastCardUpdateTime, &syncing, &state.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}
	state.Syncing = syncing != 0

	rows, err := r.db.Query(`SELECT article_id FROM recent_ids ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recent id: %w", err)
		}
		state.RecentIDs = append(state.RecentIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent ids: %w", err)
	}

	return state, nil
}

// Save writes the cursor fields and replaces the recent-id window in one
// transaction, preserving insertion order.
func (r *SQLStateRepository) Save(state *SyncState) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE sync_state
		SET last_sync_time = ?, last_card_id = ?, last_card_update_time = ?,
		    syncing = ?, updated_at = ?
		WHERE id = 1
	`, state.LastSyncTime, state.LastCardID, state.LastCardUpdateTime,
		boolToInt(state.Syncing), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM recent_ids`); err != nil {
		return fmt.Errorf("failed to clear recent ids: %w", err)
	}

	for _, id := range state.RecentIDs {
		if _, err := tx.Exec(`INSERT INTO recent_ids (article_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("failed to insert recent id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync state: %w", err)
	}

	return nil
}

// SetSyncing flips the persisted in-progress marker. The marker is an
// observability aid: mutual exclusion is enforced in memory by the engine,
// and main resets this column at startup after a crash.
func (r *SQLStateRepository) SetSyncing(syncing bool) error {
	_, err := r.db.Exec(`UPDATE sync_state SET syncing = ?, updated_at = ? WHERE id = 1`,
		boolToInt(syncing), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set syncing flag: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
