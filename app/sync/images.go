package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ivlebedev/cubox-daily/app/note"
)

const downloadTimeout = 60 * time.Second

// ImageStore downloads article images into the vault. Paths are keyed by
// article id so a re-run never downloads the same image twice.
type ImageStore struct {
	vault      BinaryVault
	httpClient *http.Client
	userAgent  string
}

func NewImageStore(vault BinaryVault, httpClient *http.Client, userAgent string) *ImageStore {
	return &ImageStore{
		vault:      vault,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Download saves the image at imageURL to `<folder>/<articleID><ext>` and
// returns the vault-relative path. The extension comes from the URL path,
// defaulting to .jpg. An existing file at the target path is returned as-is.
func (s *ImageStore) Download(ctx context.Context, imageURL, articleID, folder string) (string, error) {
	folder = strings.TrimSpace(folder)
	if folder != "" {
		folder = note.NormalizePath(folder)
		if err := s.vault.EnsureFolder(folder); err != nil {
			return "", err
		}
	}

	parsed, err := url.Parse(imageURL)
	if err != nil || !parsed.IsAbs() {
		return "", fmt.Errorf("%w: %s", ErrInvalidImageURL, imageURL)
	}

	extension := path.Ext(parsed.Path)
	if extension == "" {
		extension = ".jpg"
	}

	filename := articleID + extension
	filePath := filename
	if folder != "" {
		filePath = path.Join(folder, filename)
	}

	if s.vault.Exists(filePath) {
		return filePath, nil
	}

	data, err := s.fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	if err := s.vault.CreateBinary(filePath, data); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return filePath, nil
}

func (s *ImageStore) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return data, nil
}
