package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxUploadSize caps a single image upload (5MB, matching the HTTP layer).
const MaxUploadSize = 5 << 20

// DiskStore stores blobs as files under a single directory, served
// statically at /uploads. References are bare filenames; the directory
// layout is flat so a reference can never escape the root.
type DiskStore struct {
	root string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Put writes the blob under a generated name: <prefix>_<unix-ms>_<random><ext>.
// The random suffix keeps same-millisecond uploads from colliding.
func (s *DiskStore) Put(prefix, originalName string, r io.Reader) (string, error) {
	name := generateName(prefix, originalName)
	path := filepath.Join(s.root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return name, nil
}

// Delete removes the blob; an already-missing blob is not an error.
func (s *DiskStore) Delete(ref string) error {
	// References are generated filenames; reject anything path-like.
	if ref == "" || ref != filepath.Base(ref) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL resolves a stored reference to the locator the frontend consumes.
func (s *DiskStore) URL(baseURL, ref string) string {
	return strings.TrimSuffix(baseURL, "/") + "/uploads/" + ref
}

// Root returns the directory served at /uploads.
func (s *DiskStore) Root() string {
	return s.root
}

func generateName(prefix, originalName string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s_%d_%s%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}
