package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MediaPathPrefix is the URL path under which DiskStore objects are served.
const MediaPathPrefix = "/media/"

var _ Store = (*DiskStore)(nil)

// DiskStore keeps media on the local filesystem, for development setups
// without an object store.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media folder: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *DiskStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	path, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	return d.baseURL + MediaPathPrefix + key, nil
}

func (d *DiskStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, d.baseURL+MediaPathPrefix)
	if !ok || key == "" {
		return nil
	}
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}

// Handler serves stored objects; mount it at MediaPathPrefix.
func (d *DiskStore) Handler() http.Handler {
	return http.StripPrefix(MediaPathPrefix, http.FileServer(filesOnly{http.Dir(d.root)}))
}

// filesOnly hides directories so their contents are never listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (d *DiskStore) path(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(d.root, filepath.FromSlash(key)), nil
}
