// Package watch implements the watch-merge controller: a per-file
// Mapping cache driven by an external debounced filesystem-event source,
// re-merging into one combined schema after every batch of changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"bqschema/internal/infer"
	"bqschema/internal/input"
	"bqschema/internal/schema"
)

const defaultDebounce = 300 * time.Millisecond

// Options configures one Controller run.
type Options struct {
	InputFormat        input.Format
	IgnoreInvalidLines bool
	InferOpts          infer.Options
	FlattenOpts        schema.FlattenOptions
	Debounce           time.Duration
	OnChange           string
}

// Controller watches a fixed set of input files, keeps one Mapping per
// file, and folds the per-file cache into a single merged schema after
// every debounced batch of changes. Only the controller goroutine ever
// touches the cache or the merged mapping; per the concurrency model,
// watch mode is single-threaded inside the controller.
type Controller struct {
	files  []string
	opts   Options
	cache  map[string]*schema.Mapping
	last   []*schema.OutputField
	onDiff func(prev, next []*schema.OutputField)
	errLog func(line int, msg string)
}

// NewController builds a Controller over files, sorted so the merge
// order is deterministic. onDiff is called after every successful update
// with the previously emitted schema (nil on the first build) and the
// newly merged one. errLog, if non-nil, receives per-record problems
// encountered while rebuilding a file.
func NewController(files []string, opts Options, onDiff func(prev, next []*schema.OutputField), errLog func(line int, msg string)) *Controller {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	return &Controller{
		files:  sorted,
		opts:   opts,
		cache:  make(map[string]*schema.Mapping, len(sorted)),
		onDiff: onDiff,
		errLog: errLog,
	}
}

// Run performs an initial build of every file, emits the first merged
// schema, then watches for changes until ctx is cancelled or the watcher
// itself fails. Readers release their file handles on every exit path.
func (c *Controller) Run(ctx context.Context) error {
	for _, f := range c.files {
		if err := c.rebuildFile(f); err != nil {
			return err
		}
	}
	c.emit()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	for _, f := range c.files {
		if err := watcher.Add(f); err != nil {
			return fmt.Errorf("watch: add %q: %w", f, err)
		}
	}

	debounce := c.opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	pending := map[string]bool{}
	fire := make(chan struct{}, 1)
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-watcher.Errors:
			continue

		case <-fire:
			for f := range pending {
				// A per-file rebuild failure is logged and the stale cache
				// entry is kept; the next event for that file retries it.
				if err := c.rebuildFile(f); err != nil && c.errLog != nil {
					c.errLog(0, err.Error())
				}
			}
			pending = map[string]bool{}
			c.emit()
			c.spawnOnChange()
		}
	}
}

// rebuildFile re-reads one file end to end into a fresh Mapping and
// replaces its cache entry. The previous cache entry for path is left
// untouched until the new one is fully built, so a read failure never
// corrupts the merged schema.
func (c *Controller) rebuildFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("watch: open %q: %w", path, err)
	}
	defer f.Close()

	reader, err := input.New(string(c.opts.InputFormat), f, c.opts.IgnoreInvalidLines, c.errLog)
	if err != nil {
		return fmt.Errorf("watch: reader for %q: %w", path, err)
	}

	m := schema.NewMapping()
	walker := infer.NewWalker(c.opts.InferOpts)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("watch: read %q: %w", path, err)
		}
		errs := walker.WalkRecord(rec.Line, rec.Value, m)
		if c.errLog != nil {
			for _, e := range errs {
				c.errLog(e.Line, path+": "+e.Message)
			}
		}
	}

	c.cache[path] = m
	return nil
}

// mergedMapping folds the per-file cache into one Mapping in sorted file
// order, matching the deterministic merge order the spec requires for the
// parallel multi-file generate path.
func (c *Controller) mergedMapping() *schema.Mapping {
	walker := infer.NewWalker(c.opts.InferOpts)
	merged := schema.NewMapping()
	for _, f := range c.files {
		m := c.cache[f]
		if m == nil {
			continue
		}
		next, errs := walker.Merge(merged, m)
		if c.errLog != nil {
			for _, e := range errs {
				c.errLog(e.Line, f+": "+e.Message)
			}
		}
		merged = next
	}
	return merged
}

func (c *Controller) emit() {
	out := schema.Flatten(c.mergedMapping(), c.opts.FlattenOpts)
	if c.onDiff != nil {
		c.onDiff(c.last, out)
	}
	c.last = out
}

// spawnOnChange runs the configured on-change command as a detached
// child. The next event is processed regardless of its exit status.
func (c *Controller) spawnOnChange() {
	if c.opts.OnChange == "" {
		return
	}
	cmd := exec.Command("sh", "-c", c.opts.OnChange)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		if c.errLog != nil {
			c.errLog(0, "on-change command failed to start: "+err.Error())
		}
		return
	}
	go func() {
		_ = cmd.Wait()
	}()
}
