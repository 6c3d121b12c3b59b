package sync

import "errors"

// ErrConfigurationMissing aborts a pass before any state is touched when the
// Cubox domain or API key is not configured.
var ErrConfigurationMissing = errors.New("cubox domain and API key are not configured")

// Per-article formatting failures. The offending article is logged and
// skipped; the pass continues.
var (
	ErrEmptyContent    = errors.New("article has no content")
	ErrNoImageFound    = errors.New("article content contains no image URL")
	ErrEmptyTemplate   = errors.New("link template is empty")
	ErrInvalidImageURL = errors.New("invalid image URL")
	ErrDownloadFailed  = errors.New("image download failed")
)
