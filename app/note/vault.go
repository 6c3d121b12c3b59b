package note

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotAFolder indicates a path expected to be a folder is occupied by a file.
var ErrNotAFolder = errors.New("path is not a folder")

// Vault exposes file and folder primitives rooted at a local directory.
// All paths are slash-separated and relative to the root.
type Vault struct {
	root string
}

func NewVault(root string) *Vault {
	return &Vault{root: root}
}

// NormalizePath cleans a vault-relative path: forward slashes, no leading or
// trailing slash, "." for the root.
func NormalizePath(p string) string {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.Trim(cleaned, "/")
	if cleaned == "" {
		return "."
	}
	return cleaned
}

func (v *Vault) abs(relPath string) string {
	return filepath.Join(v.root, filepath.FromSlash(NormalizePath(relPath)))
}

func (v *Vault) Exists(relPath string) bool {
	_, err := os.Stat(v.abs(relPath))
	return err == nil
}

// EnsureFolder creates the folder (and parents) when absent. An empty or "."
// path is the vault root and always exists.
func (v *Vault) EnsureFolder(relPath string) error {
	normalized := NormalizePath(relPath)
	if normalized == "." {
		return nil
	}

	info, err := os.Stat(v.abs(normalized))
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotAFolder, normalized)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat folder %s: %w", normalized, err)
	}

	if err := os.MkdirAll(v.abs(normalized), 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", normalized, err)
	}

	return nil
}

func (v *Vault) ReadFile(relPath string) (string, error) {
	data, err := os.ReadFile(v.abs(relPath))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return string(data), nil
}

func (v *Vault) WriteFile(relPath, content string) error {
	if err := os.WriteFile(v.abs(relPath), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// CreateBinary writes raw bytes, creating parent folders when needed.
func (v *Vault) CreateBinary(relPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(v.abs(relPath)), 0755); err != nil {
		return fmt.Errorf("failed to create parent folders for %s: %w", relPath, err)
	}
	if err := os.WriteFile(v.abs(relPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}
