package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivlebedev/cubox-daily/app/database"
	"github.com/ivlebedev/cubox-daily/app/settings"
	syncer "github.com/ivlebedev/cubox-daily/app/sync"
)

func NewHandler(runner SyncRunner, states database.StateRepository, settingsStore *settings.Store) *Handler {
	return &Handler{
		runner:   runner,
		states:   states,
		settings: settingsStore,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"syncing":   h.runner.Running(),
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	state, err := h.states.Load()
	if err != nil {
		slog.Error("Database error", "operation", "load_state", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	snap := h.settings.Get()

	c.JSON(http.StatusOK, gin.H{
		"syncing":               h.runner.Running(),
		"last_sync_time":        state.LastSyncTime,
		"last_card_id":          state.LastCardID,
		"last_card_update_time": state.LastCardUpdateTime,
		"recent_id_count":       len(state.RecentIDs),
		"state_updated_at":      state.UpdatedAt.Format(time.RFC3339),
		"settings": gin.H{
			"domain":                snap.Domain,
			"configured":            snap.Domain != "" && snap.APIKey != "",
			"sync_interval_minutes": snap.SyncIntervalMinutes,
			"note_folder":           snap.NoteFolder,
			"image_folder":          snap.ImageFolder,
		},
	})
}

// TriggerSync runs a manual pass. A pass already in flight yields 409; the
// engine's guard makes the collision harmless.
func (h *Handler) TriggerSync(c *gin.Context) {
	result, err := h.runner.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrConfigurationMissing) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "configuration missing",
				"message": "Set the Cubox domain and API key in the settings file",
			})
			return
		}
		slog.Error("Manual sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.Status == syncer.StatusAlreadyRunning {
		c.JSON(http.StatusConflict, gin.H{"status": string(result.Status)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   string(result.Status),
		"appended": result.Appended,
	})
}
