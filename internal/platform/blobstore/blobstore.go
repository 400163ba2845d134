// Package blobstore keeps generated files, such as document PDFs, in an
// export folder. It defines the BlobStore interface, a directory-backed
// implementation, an in-memory one for tests, and read-only Echo handlers.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/agenda/pkg/pagination"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidName  = errors.New("invalid file name")
)

// BlobMetadata describes a stored file.
type BlobMetadata struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Hash       string    `json:"hash"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// BlobStore saves files by name. Put overwrites a file of the same name.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (*BlobMetadata, error)
	Get(ctx context.Context, name string) ([]byte, *BlobMetadata, error)
	List(ctx context.Context) ([]*BlobMetadata, error)
}

// cleanName rejects anything that is not a plain file name.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ---------------------------------------------------------------------------
// Directory store
// ---------------------------------------------------------------------------

// DirStore keeps files in a single directory, created on first write.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	if root == "" {
		root = "."
	}
	return &DirStore{root: root}
}

func (s *DirStore) Root() string { return s.root }

// Path returns where name is stored.
func (s *DirStore) Path(name string) string { return filepath.Join(s.root, name) }

// Put writes through a temp file and renames it so readers never see a
// partial PDF.
func (s *DirStore) Put(_ context.Context, name string, data []byte) (*BlobMetadata, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.root, err)
	}

	tmp, err := os.CreateTemp(s.root, "."+name+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("rename %s: %w", name, err)
	}

	info, err := os.Stat(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	return &BlobMetadata{Name: name, Size: info.Size(), Hash: hashOf(data), ModifiedAt: info.ModTime().UTC()}, nil
}

func (s *DirStore) Get(_ context.Context, name string) ([]byte, *BlobMetadata, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, nil, err
	}
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	return data, &BlobMetadata{Name: name, Size: info.Size(), Hash: hashOf(data), ModifiedAt: info.ModTime().UTC()}, nil
}

// List returns the PDFs of the folder, newest first. The hash is left empty
// to avoid reading every file.
func (s *DirStore) List(_ context.Context) ([]*BlobMetadata, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return []*BlobMetadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	out := make([]*BlobMetadata, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, &BlobMetadata{Name: e.Name(), Size: info.Size(), ModifiedAt: info.ModTime().UTC()})
	}
	sortNewest(out)
	return out, nil
}

func sortNewest(items []*BlobMetadata) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].ModifiedAt.Equal(items[j].ModifiedAt) {
			return items[i].ModifiedAt.After(items[j].ModifiedAt)
		}
		return items[i].Name < items[j].Name
	})
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type storedBlob struct {
	meta BlobMetadata
	data []byte
}

type InMemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]*storedBlob
	now   func() time.Time
}

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{blobs: make(map[string]*storedBlob), now: time.Now}
}

func (s *InMemoryBlobStore) Put(_ context.Context, name string, data []byte) (*BlobMetadata, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b := &storedBlob{
		meta: BlobMetadata{Name: name, Size: int64(len(cp)), Hash: hashOf(cp), ModifiedAt: s.now().UTC()},
		data: cp,
	}

	s.mu.Lock()
	s.blobs[name] = b
	s.mu.Unlock()

	meta := b.meta
	return &meta, nil
}

func (s *InMemoryBlobStore) Get(_ context.Context, name string) ([]byte, *BlobMetadata, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	b, ok := s.blobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := b.meta
	return append([]byte(nil), b.data...), &meta, nil
}

func (s *InMemoryBlobStore) List(_ context.Context) ([]*BlobMetadata, error) {
	s.mu.RLock()
	out := make([]*BlobMetadata, 0, len(s.blobs))
	for _, b := range s.blobs {
		meta := b.meta
		out = append(out, &meta)
	}
	s.mu.RUnlock()
	sortNewest(out)
	return out, nil
}

// ---------------------------------------------------------------------------
// HTTP handlers
// ---------------------------------------------------------------------------

type BlobHandler struct {
	store BlobStore
}

func NewBlobHandler(store BlobStore) *BlobHandler {
	return &BlobHandler{store: store}
}

func (h *BlobHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/exports", h.handleList)
	g.GET("/exports/:name", h.handleDownload)
}

func (h *BlobHandler) handleList(c echo.Context) error {
	items, err := h.store.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.Of(items, pagination.FromContext(c)))
}

func (h *BlobHandler) handleDownload(c echo.Context) error {
	data, meta, err := h.store.Get(c.Request().Context(), c.Param("name"))
	switch {
	case errors.Is(err, ErrBlobNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, Attachment(meta.Name))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
