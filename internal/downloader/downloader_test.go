package downloader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

type fakeFetcher struct {
	mu    sync.Mutex
	files map[string]string
	calls []int64
	block chan struct{}
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, fileURL string, resumeFrom int64) (io.ReadCloser, int64, bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, resumeFrom)
	body, ok := f.files[fileURL]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, 0, false, ctx.Err()
		}
	}
	if !ok {
		return nil, 0, false, errors.New("HTTP 404")
	}
	if resumeFrom > 0 && resumeFrom < int64(len(body)) {
		rest := body[resumeFrom:]
		return io.NopCloser(strings.NewReader(rest)), int64(len(rest)), true, nil
	}
	return io.NopCloser(strings.NewReader(body)), int64(len(body)), false, nil
}

func TestFileName(t *testing.T) {
	tests := []struct {
		r    recipe.Recipe
		want string
	}{
		{recipe.Builtin()[0], "1-grilled-salmon-with-lemon.jpg"},
		{recipe.Recipe{ID: "x", Title: "Tea", Image: "https://cdn.example.com/tea.PNG?w=10"}, "x-tea.png"},
		{recipe.Recipe{ID: "y", Title: "!!!", Image: "https://cdn.example.com/y.bmp"}, "y.jpg"},
	}
	for _, tt := range tests {
		if got := FileName(tt.r); got != tt.want {
			t.Fatalf("FileName(%s) = %q, want %q", tt.r.ID, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	r := recipe.Recipe{ID: "1", Title: "Soup", Image: "https://img/soup.jpg"}
	f := &fakeFetcher{files: map[string]string{r.Image: "jpegdata"}}
	m := NewManager(f, dir, 2)

	var mu sync.Mutex
	var statuses []Status
	m.SetOnChange(func(s Snapshot) {
		mu.Lock()
		statuses = append(statuses, s.Status)
		mu.Unlock()
	})

	path, err := m.Save(context.Background(), r)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "1-soup.jpg") {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpegdata" {
		t.Fatalf("saved file = %q, %v", data, err)
	}
	if _, err := os.Stat(path + ".part"); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind")
	}

	mu.Lock()
	last := statuses[len(statuses)-1]
	mu.Unlock()
	if last != StatusCompleted {
		t.Fatalf("last notification = %v, want Completed", last)
	}

	// Saving again reuses the finished item.
	if _, err := m.Save(context.Background(), r); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if len(m.Items()) != 1 || len(f.calls) != 1 {
		t.Fatalf("duplicate save started a new download")
	}
}

func TestSaveResumesPartialFile(t *testing.T) {
	dir := t.TempDir()
	r := recipe.Recipe{ID: "2", Title: "Stew", Image: "https://img/stew.jpg"}
	if err := os.WriteFile(filepath.Join(dir, "2-stew.jpg.part"), []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := &fakeFetcher{files: map[string]string{r.Image: "abcdef"}}

	path, err := NewManager(f, dir, 1).Save(context.Background(), r)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "abcdef" || f.calls[0] != 3 {
		t.Fatalf("resume failed: data=%q calls=%v", data, f.calls)
	}
}

func TestSaveErrors(t *testing.T) {
	m := NewManager(&fakeFetcher{files: map[string]string{}}, t.TempDir(), 1)

	if _, err := m.Save(context.Background(), recipe.Recipe{ID: "1", Title: "No image"}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if _, err := m.Save(context.Background(), recipe.Recipe{ID: "2", Title: "Gone", Image: "https://img/gone.jpg"}); err == nil {
		t.Fatalf("expected fetch error")
	}
	if m.HasActive() {
		t.Fatalf("failed save should not be active")
	}
}

func TestEnqueueAndCancelAll(t *testing.T) {
	r := recipe.Recipe{ID: "3", Title: "Pie", Image: "https://img/pie.jpg"}
	f := &fakeFetcher{files: map[string]string{r.Image: "pie"}, block: make(chan struct{})}
	m := NewManager(f, t.TempDir(), 1)

	done := make(chan Snapshot, 8)
	m.SetOnChange(func(s Snapshot) {
		if s.Status == StatusCompleted || s.Status == StatusFailed {
			done <- s
		}
	})

	item, created, err := m.Enqueue(r)
	if err != nil || !created {
		t.Fatalf("Enqueue: %v created=%v", err, created)
	}
	if again, created, _ := m.Enqueue(r); created || again != item {
		t.Fatalf("duplicate enqueue created a new item")
	}
	if !m.HasActive() {
		t.Fatalf("expected active item")
	}

	m.CancelAll()
	select {
	case s := <-done:
		if s.Status != StatusFailed {
			t.Fatalf("cancelled item status = %v", s.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancelled item never finished")
	}
	if m.HasActive() {
		t.Fatalf("no item should be active after CancelAll")
	}
}
