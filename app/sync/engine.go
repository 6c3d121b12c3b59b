package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ivlebedev/cubox-daily/app/cubox"
	"github.com/ivlebedev/cubox-daily/app/database"
	"github.com/ivlebedev/cubox-daily/app/settings"
)

// RecentWindowCapacity bounds the persisted dedup window.
const RecentWindowCapacity = 200

type Status string

const (
	StatusCompleted      Status = "completed"
	StatusAlreadyRunning Status = "already_running"
)

// Result summarizes one sync pass. Zero appended entries is a valid,
// non-error outcome.
type Result struct {
	Status   Status
	Appended int
}

// Engine drives one sync pass: paginate the article source, filter against
// the persisted cursor, format survivors, append once to the daily note, and
// commit the cursor as a whole.
//
// Mutual exclusion between the timer and manual triggers is the in-memory
// `running` flag; a second trigger during a pass is a no-op. The persisted
// syncing column mirrors the flag for observability only.
type Engine struct {
	source    ArticleSource
	sink      NoteSink
	formatter *Formatter
	states    database.StateRepository
	settings  *settings.Store
	pageSize  int
	running   atomic.Bool
}

func NewEngine(source ArticleSource, sink NoteSink, formatter *Formatter,
	states database.StateRepository, settingsStore *settings.Store) *Engine {
	return &Engine{
		source:    source,
		sink:      sink,
		formatter: formatter,
		states:    states,
		settings:  settingsStore,
		pageSize:  cubox.DefaultPageSize,
	}
}

// Running reports whether a pass is currently in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run executes one sync pass. Transport and storage failures abort the pass
// and skip the cursor commit; per-article formatting failures only skip that
// article.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		slog.Debug("Sync already running, skipping")
		return &Result{Status: StatusAlreadyRunning}, nil
	}
	defer e.running.Store(false)

	snap := e.settings.Get()
	if snap.Domain == "" || snap.APIKey == "" {
		return nil, ErrConfigurationMissing
	}

	if err := e.states.SetSyncing(true); err != nil {
		return nil, err
	}
	defer func() {
		if err := e.states.SetSyncing(false); err != nil {
			slog.Error("Failed to clear syncing marker", "error", err)
		}
	}()

	state, err := e.states.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sync cursor: %w", err)
	}

	cursorID := state.LastCardID
	cursorTime := state.LastCardUpdateTime
	watermark := state.LastSyncTime
	newestSeen := watermark
	recent := NewRecentWindow(RecentWindowCapacity, state.RecentIDs...)
	var entries []string

	slog.Debug("Sync pass started",
		"watermark", watermark,
		"cursor_id", cursorID,
		"recent_ids", recent.Len())

	for {
		page, err := e.source.ListArticlesPage(ctx, cursorID, cursorTime, e.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch article page: %w", err)
		}

		if len(page.Articles) == 0 {
			break
		}

		for _, article := range page.Articles {
			articleTime, err := articleInstant(article)
			if err != nil {
				slog.Warn("Article skipped", "id", article.ID, "error", err)
				continue
			}

			if articleTime <= watermark || recent.Contains(article.ID) {
				continue
			}

			entry, err := e.formatter.Format(ctx, article, snap)
			if err != nil {
				slog.Warn("Entry skipped", "id", article.ID, "error", err)
				continue
			}

			entries = append(entries, entry)
			recent.Add(article.ID)
			if articleTime > newestSeen {
				newestSeen = articleTime
			}
		}

		// Advance past the page even when every article was skipped or
		// failed, so an all-skipped page cannot stall pagination.
		last := page.Articles[len(page.Articles)-1]
		cursorID = last.ID
		cursorTime = last.UpdateTime

		if !page.HasMore {
			break
		}
	}

	if len(entries) > 0 {
		notePath, err := e.sink.ResolveToday(snap.NoteFolder, snap.NoteDateFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve daily note: %w", err)
		}
		if err := e.sink.Append(notePath, strings.Join(entries, "\n\n")); err != nil {
			return nil, fmt.Errorf("failed to append to daily note: %w", err)
		}
		slog.Info("Sync completed", "appended", len(entries), "note", notePath)
	} else {
		slog.Debug("Sync completed, nothing new")
	}

	if cursorID != "" && cursorTime != "" {
		state.LastCardID = cursorID
		state.LastCardUpdateTime = cursorTime
	}
	state.LastSyncTime = nextWatermark(watermark, cursorTime, newestSeen, len(entries) > 0)
	state.RecentIDs = recent.IDs()
	state.Syncing = true // cleared by the deferred SetSyncing(false)

	if err := e.states.Save(state); err != nil {
		return nil, fmt.Errorf("failed to commit sync cursor: %w", err)
	}

	return &Result{Status: StatusCompleted, Appended: len(entries)}, nil
}

// nextWatermark picks the new watermark: the page cursor's instant when it
// parses, else the newest appended article, else unchanged. The watermark
// never decreases.
func nextWatermark(watermark int64, cursorTime string, newestSeen int64, appended bool) int64 {
	if cursorTime != "" {
		if instant, err := cubox.ParseInstant(cursorTime); err == nil {
			if instant > watermark {
				return instant
			}
			return watermark
		}
		slog.Warn("Unparseable page cursor time, falling back", "cursor_time", cursorTime)
	}
	if appended && newestSeen > watermark {
		return newestSeen
	}
	return watermark
}

// articleInstant returns the article's update instant, falling back to its
// creation instant.
func articleInstant(article cubox.Article) (int64, error) {
	source := article.UpdateTime
	if source == "" {
		source = article.CreateTime
	}
	if source == "" {
		return 0, fmt.Errorf("article %s has no update or create time: %w", article.ID, cubox.ErrInvalidTimestamp)
	}
	return cubox.ParseInstant(source)
}
