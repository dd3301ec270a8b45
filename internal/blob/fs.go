// Package blob stores uploaded note files on the local file system and maps
// them to public /files/ URLs.
package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const uploadsPrefix = "user-uploads"

// Store writes blobs under root and addresses them as
// {baseURL}/files/user-uploads/{ownerId}/{unixMillis}-{filename}.
// The timestamp prefix keeps re-uploads of the same filename from colliding.
type Store struct {
	root    string // absolute path to the uploads directory
	baseURL string // public origin, e.g. http://localhost:8080
}

func NewStore(root, baseURL string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blob: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &Store{root: abs, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory the HTTP layer serves under /files/.
func (s *Store) Root() string {
	return s.root
}

// Upload writes the blob and returns its public URL. contentType is accepted
// for contract compatibility; responses rely on extension sniffing when the
// file is served back.
func (s *Store) Upload(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("blob: owner id is required")
	}
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	ts := time.Now().UnixMilli()
	rel := path.Join(uploadsPrefix, ownerID, fmt.Sprintf("%d-%s", ts, name))
	abs, err := s.safePath(rel)
	if err != nil {
		return "", err
	}
	// Same name uploaded twice within one millisecond still gets a new path.
	for i := 1; ; i++ {
		if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
			break
		}
		rel = path.Join(uploadsPrefix, ownerID, fmt.Sprintf("%d-%d-%s", ts, i, name))
		if abs, err = s.safePath(rel); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir: %w", err)
	}

	// Atomic write: tmp file, fsync, rename.
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".upload-tmp-*")
	if err != nil {
		return "", fmt.Errorf("blob: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("blob: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("blob: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("blob: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("blob: rename: %w", err)
	}
	success = true

	return s.baseURL + "/files/" + rel, nil
}

// Remove deletes the blob a public URL points at. URLs from a different origin
// are rejected rather than guessed about.
func (s *Store) Remove(ctx context.Context, fileURL string) error {
	rel, ok := strings.CutPrefix(fileURL, s.baseURL+"/files/")
	if !ok {
		return fmt.Errorf("blob: url %q is not served by this store", fileURL)
	}
	abs, err := s.safePath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("blob: remove %s: %w", rel, err)
	}
	return nil
}

// safePath resolves rel against the uploads root and rejects any result that
// escapes it.
func (s *Store) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("blob: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(s.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("blob: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob: path escapes uploads root: %s", rel)
	}
	return abs, nil
}

// sanitizeFilename keeps the base name and replaces anything outside a safe
// character set so the stored path round-trips through a URL unescaped.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("blob: invalid filename: %q", filename)
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "._") == "" {
		return "", fmt.Errorf("blob: invalid filename: %q", filename)
	}
	return out, nil
}
