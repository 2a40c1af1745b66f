// Package downloader saves recipe images to disk in the background.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
	"github.com/JohnDeved/recipe-explorer/internal/util"
)

// Status represents a save's state.
type Status int

const (
	StatusQueued Status = iota
	StatusActive
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusActive:
		return "Downloading"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ErrNoImage is returned for recipes without an image URL.
var ErrNoImage = errors.New("recipe has no image")

var errCancelled = errors.New("cancelled")

// Fetcher opens a remote file, optionally resuming from an offset.
type Fetcher interface {
	DownloadFile(ctx context.Context, fileURL string, resumeFrom int64) (io.ReadCloser, int64, bool, error)
}

// Item is a single image save.
type Item struct {
	ID          int
	RecipeID    string
	Name        string
	URL         string
	DestPath    string
	TotalBytes  int64
	DoneBytes   atomic.Int64
	Status      Status
	Error       error
	StartedAt   time.Time
	CompletedAt time.Time
	cancel      context.CancelFunc
	Mu          sync.Mutex
}

// Snapshot is a copy of an item's state, safe to pass between goroutines.
type Snapshot struct {
	ID         int
	RecipeID   string
	Name       string
	DestPath   string
	Status     Status
	Err        error
	DoneBytes  int64
	TotalBytes int64
}

// Snapshot returns the item's current state.
func (it *Item) Snapshot() Snapshot {
	it.Mu.Lock()
	defer it.Mu.Unlock()
	return Snapshot{
		ID:         it.ID,
		RecipeID:   it.RecipeID,
		Name:       it.Name,
		DestPath:   it.DestPath,
		Status:     it.Status,
		Err:        it.Error,
		DoneBytes:  it.DoneBytes.Load(),
		TotalBytes: it.TotalBytes,
	}
}

// Manager runs image saves with bounded parallelism.
type Manager struct {
	fetcher     Fetcher
	downloadDir string

	mu         sync.Mutex
	items      []*Item
	nextID     int
	sem        chan struct{}
	onChange   func(Snapshot)
	lastNotify time.Time
}

// NewManager creates a manager saving into downloadDir.
func NewManager(f Fetcher, downloadDir string, maxParallel int) *Manager {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Manager{
		fetcher:     f,
		downloadDir: downloadDir,
		sem:         make(chan struct{}, maxParallel),
	}
}

// Dir returns the destination directory.
func (m *Manager) Dir() string { return m.downloadDir }

// SetOnChange sets a callback invoked when an item's state changes. Byte
// progress is throttled; status transitions always notify.
func (m *Manager) SetOnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) notify(it *Item, force bool) {
	m.mu.Lock()
	fn := m.onChange
	now := time.Now()
	if !force && now.Sub(m.lastNotify) < 100*time.Millisecond {
		m.mu.Unlock()
		return
	}
	m.lastNotify = now
	m.mu.Unlock()
	if fn != nil {
		fn(it.Snapshot())
	}
}

// FileName returns the file an image of r is saved as.
func FileName(r recipe.Recipe) string {
	name := r.ID
	if slug := util.Slug(r.Title); slug != "" {
		name += "-" + slug
	}
	return name + imageExt(r.Image)
}

func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif":
		return ext
	}
	return ".jpg"
}

func (m *Manager) newItem(r recipe.Recipe) (*Item, bool, error) {
	if strings.TrimSpace(r.Image) == "" {
		return nil, false, fmt.Errorf("%w: %s", ErrNoImage, r.ID)
	}

	name := FileName(r)
	destPath := filepath.Join(m.downloadDir, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		it.Mu.Lock()
		duplicate := it.DestPath == destPath && it.Status != StatusFailed
		it.Mu.Unlock()
		if duplicate {
			return it, false, nil
		}
	}

	m.nextID++
	item := &Item{
		ID:       m.nextID,
		RecipeID: r.ID,
		Name:     name,
		URL:      r.Image,
		DestPath: destPath,
		Status:   StatusQueued,
	}
	m.items = append(m.items, item)
	return item, true, nil
}

// Enqueue starts saving the image of r in the background. It returns the
// existing item when the same file is already queued, active or done.
func (m *Manager) Enqueue(r recipe.Recipe) (*Item, bool, error) {
	item, created, err := m.newItem(r)
	if err != nil || !created {
		return item, created, err
	}
	m.notify(item, true)
	go m.processItem(context.Background(), item)
	return item, true, nil
}

// Save downloads the image of r and waits for it to finish.
func (m *Manager) Save(ctx context.Context, r recipe.Recipe) (string, error) {
	item, created, err := m.newItem(r)
	if err != nil {
		return "", err
	}
	if created {
		m.processItem(ctx, item)
	}
	snap := item.Snapshot()
	if snap.Status == StatusFailed {
		return "", snap.Err
	}
	return snap.DestPath, nil
}

// Items returns a snapshot of all items.
func (m *Manager) Items() []*Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Item, len(m.items))
	copy(result, m.items)
	return result
}

// HasActive returns true when any item is queued or active.
func (m *Manager) HasActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		it.Mu.Lock()
		status := it.Status
		it.Mu.Unlock()
		if status == StatusQueued || status == StatusActive {
			return true
		}
	}
	return false
}

// CancelAll cancels all active or queued saves.
func (m *Manager) CancelAll() {
	var cancelled []*Item
	m.mu.Lock()
	for _, it := range m.items {
		it.Mu.Lock()
		if it.Status == StatusQueued || it.Status == StatusActive {
			if it.cancel != nil {
				it.cancel()
			}
			it.Status = StatusFailed
			it.Error = errCancelled
			cancelled = append(cancelled, it)
		}
		it.Mu.Unlock()
	}
	m.mu.Unlock()

	for _, it := range cancelled {
		m.notify(it, true)
	}
}

func (m *Manager) processItem(parent context.Context, item *Item) {
	// Acquire semaphore slot.
	select {
	case m.sem <- struct{}{}:
	case <-parent.Done():
		m.finish(item, parent.Err())
		return
	}
	defer func() { <-m.sem }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	item.Mu.Lock()
	if item.Status == StatusFailed {
		item.Mu.Unlock()
		return
	}
	item.cancel = cancel
	item.Status = StatusActive
	item.StartedAt = time.Now()
	item.Mu.Unlock()
	m.notify(item, true)

	m.finish(item, m.downloadFile(ctx, item))
}

func (m *Manager) finish(item *Item, err error) {
	item.Mu.Lock()
	switch {
	case err == nil:
		item.Status = StatusCompleted
		item.CompletedAt = time.Now()
	case errors.Is(err, context.Canceled):
		item.Status = StatusFailed
		item.Error = errCancelled
	default:
		item.Status = StatusFailed
		item.Error = err
	}
	item.cancel = nil
	item.Mu.Unlock()
	m.notify(item, true)
}

func (m *Manager) downloadFile(ctx context.Context, item *Item) error {
	if err := os.MkdirAll(filepath.Dir(item.DestPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	partPath := item.DestPath + ".part"

	var resumeFrom int64
	if info, err := os.Stat(partPath); err == nil {
		resumeFrom = info.Size()
	}

	body, contentLength, resumed, err := m.fetcher.DownloadFile(ctx, item.URL, resumeFrom)
	if err != nil {
		return err
	}
	defer body.Close()

	flags := os.O_WRONLY | os.O_CREATE
	if resumed {
		flags |= os.O_APPEND
		item.DoneBytes.Store(resumeFrom)
	} else {
		flags |= os.O_TRUNC
		item.DoneBytes.Store(0)
	}
	if contentLength > 0 {
		item.Mu.Lock()
		item.TotalBytes = item.DoneBytes.Load() + contentLength
		item.Mu.Unlock()
	}

	f, err := os.OpenFile(partPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("writing file: %w", werr)
			}
			item.DoneBytes.Add(int64(n))
			m.notify(item, false)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(partPath, item.DestPath); err != nil {
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}
