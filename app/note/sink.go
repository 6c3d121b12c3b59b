package note

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
)

// Sink resolves and appends to the daily note. One file per day, named by
// a configurable date layout inside a configurable folder.
type Sink struct {
	vault *Vault
	now   func() time.Time
}

func NewSink(vault *Vault) *Sink {
	return &Sink{
		vault: vault,
		now:   time.Now,
	}
}

// ResolveToday returns the vault-relative path of today's note, creating the
// folder and an empty file when absent.
func (s *Sink) ResolveToday(folder, dateFormat string) (string, error) {
	name := s.now().Format(dateFormat) + ".md"

	folder = strings.TrimSpace(folder)
	notePath := name
	if folder != "" {
		if err := s.vault.EnsureFolder(folder); err != nil {
			return "", fmt.Errorf("failed to prepare note folder: %w", err)
		}
		notePath = path.Join(NormalizePath(folder), name)
	}

	if !s.vault.Exists(notePath) {
		if err := s.vault.WriteFile(notePath, ""); err != nil {
			return "", fmt.Errorf("failed to create daily note: %w", err)
		}
		slog.Debug("Daily note created", "path", notePath)
	}

	return notePath, nil
}

// Append performs a read-modify-write: the payload is trimmed of leading and
// trailing blank lines, then joined to the existing content with a blank
// line, only when both sides are non-empty.
func (s *Sink) Append(notePath, payload string) error {
	existing, err := s.vault.ReadFile(notePath)
	if err != nil {
		return err
	}

	trimmed := strings.Trim(payload, "\n")
	separator := ""
	if len(existing) > 0 && len(trimmed) > 0 {
		separator = "\n\n"
	}

	return s.vault.WriteFile(notePath, existing+separator+trimmed)
}
