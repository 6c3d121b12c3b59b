package settings

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store caches the settings file in memory and guards concurrent access.
// Load merges the file over Defaults; Save writes the current state back.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Settings
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		current: Defaults(),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file, merging it over defaults. A missing file is
// not an error: defaults apply until the first Save.
func (s *Store) Load() error {
	loaded := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Settings file not found, using defaults", "path", s.path)
			s.mu.Lock()
			s.current = loaded
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	loaded.APIKey = NormalizeAPIKey(loaded.APIKey)

	if err := validate(loaded); err != nil {
		return fmt.Errorf("invalid settings %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	slog.Debug("Settings loaded", "path", s.path,
		"domain", loaded.Domain,
		"sync_interval_minutes", loaded.SyncIntervalMinutes)

	return nil
}

// Save persists the given settings and makes them current.
func (s *Store) Save(settings Settings) error {
	settings.APIKey = NormalizeAPIKey(settings.APIKey)

	if err := validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	data, err := yaml.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()

	return nil
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// NormalizeAPIKey accepts either a raw key or a full API link and returns the
// key. Cubox hands out links whose trailing path segment is the key.
func NormalizeAPIKey(raw string) string {
	key := strings.TrimSpace(raw)
	if !strings.Contains(key, "://") {
		return key
	}

	parsed, err := url.Parse(key)
	if err != nil {
		return key
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return key
	}

	return segments[len(segments)-1]
}

func validate(s Settings) error {
	if s.Domain != "" && !slices.Contains(KnownDomains, s.Domain) {
		return fmt.Errorf("unknown domain %q (expected one of %v)", s.Domain, KnownDomains)
	}
	if s.SyncIntervalMinutes < 0 {
		return fmt.Errorf("sync_interval_minutes must not be negative, got %d", s.SyncIntervalMinutes)
	}
	if s.ImageEmbedWidth < 0 {
		return fmt.Errorf("image_embed_width must not be negative, got %d", s.ImageEmbedWidth)
	}
	return nil
}
