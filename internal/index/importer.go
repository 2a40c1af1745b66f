package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/JohnDeved/recipe-explorer/internal/logger"
	"github.com/JohnDeved/recipe-explorer/internal/recipe"
)

// FetchFunc loads the recipes of one catalog source.
type FetchFunc func(ctx context.Context, source string) ([]recipe.Recipe, error)

// ImportProgress reports import progress.
type ImportProgress struct {
	CurrentSource string
	SourcesDone   int64
	RecipesFound  int64
	Skipped       int64
	Errors        int64
}

// ImportResult summarizes a finished import.
type ImportResult struct {
	Imported int
	Skipped  int
	Failed   []string
}

// Importer loads several sources in parallel and stores their union.
type Importer struct {
	fetch      FetchFunc
	db         *DB
	log        *logger.Logger
	workers    int
	onProgress func(ImportProgress)

	sourcesDone  atomic.Int64
	recipesFound atomic.Int64
	skipped      atomic.Int64
	errCount     atomic.Int64
	mu           sync.Mutex
}

// NewImporter creates an importer writing into db.
func NewImporter(fetch FetchFunc, db *DB, log *logger.Logger) *Importer {
	return &Importer{fetch: fetch, db: db, log: log, workers: 4}
}

// SetWorkers controls how many sources are fetched at once.
func (im *Importer) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	im.workers = workers
}

// SetProgressCallback sets a function called on progress updates.
func (im *Importer) SetProgressCallback(fn func(ImportProgress)) {
	im.onProgress = fn
}

func (im *Importer) reportProgress(source string) {
	if im.onProgress == nil {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.onProgress(ImportProgress{
		CurrentSource: source,
		SourcesDone:   im.sourcesDone.Load(),
		RecipesFound:  im.recipesFound.Load(),
		Skipped:       im.skipped.Load(),
		Errors:        im.errCount.Load(),
	})
}

// Import fetches every source and replaces the stored catalog with their
// concatenation in source order. A recipe whose id was already seen in an
// earlier source is skipped. Sources that fail to load are reported in the
// result; the import fails only when every source failed.
func (im *Importer) Import(ctx context.Context, sources []string) (ImportResult, error) {
	var result ImportResult
	if len(sources) == 0 {
		return result, fmt.Errorf("no sources to import")
	}

	fetched := make([][]recipe.Recipe, len(sources))
	failed := make([]bool, len(sources))

	workers := min(im.workers, len(sources))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				src := sources[idx]
				im.reportProgress(src)
				recipes, err := im.fetch(ctx, src)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					im.log.Warn("Error loading source %s: %v", src, err)
					im.errCount.Add(1)
					failed[idx] = true
				} else {
					fetched[idx] = recipes
					im.recipesFound.Add(int64(len(recipes)))
				}
				im.sourcesDone.Add(1)
				im.reportProgress(src)
			}
		}()
	}

	for idx := range sources {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return result, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	var entries []Entry
	seen := map[string]struct{}{}
	for idx, src := range sources {
		if failed[idx] {
			result.Failed = append(result.Failed, src)
			continue
		}
		for _, r := range fetched[idx] {
			if _, dup := seen[r.ID]; dup {
				im.log.Debug("Skipping duplicate recipe %s from %s", r.ID, src)
				im.skipped.Add(1)
				result.Skipped++
				continue
			}
			seen[r.ID] = struct{}{}
			entries = append(entries, Entry{Recipe: r, Source: src})
		}
	}

	if len(result.Failed) == len(sources) {
		return result, fmt.Errorf("all %d sources failed to load", len(sources))
	}

	recipes := make([]recipe.Recipe, len(entries))
	for i, e := range entries {
		recipes[i] = e.Recipe
	}
	if _, err := recipe.NewCatalog(recipes); err != nil {
		return result, err
	}

	if err := im.db.ReplaceAll(entries); err != nil {
		return result, fmt.Errorf("storing recipes: %w", err)
	}
	result.Imported = len(entries)
	return result, nil
}
