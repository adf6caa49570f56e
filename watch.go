package papermate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchOps are the events that can change a watched file's content.
// Editors that save by rename-and-replace produce Create or Rename.
const watchOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch re-renders req each time one of its input files changes, until ctx
// is canceled. Changes arriving within debounce of each other trigger a
// single render. onRender receives every render outcome; a failed render
// does not stop watching. The initial render is the caller's.
//
// Watched files are the manuscript, citation style, bibliography, and the
// pandoc defaults file. Their parent directories are watched so that files
// replaced by editors are still followed.
func (p *Paper) Watch(ctx context.Context, req Request, debounce time.Duration, onRender func(*Result, error)) error {
	if !req.Tags.Current() {
		return ErrWatchTagged
	}
	if err := req.Validate(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	targets, err := p.watchTargets(req.Files)
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for target := range targets {
		dir := filepath.Dir(target)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
		p.logf("watching %s", dir)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(watchOps) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			p.logf("changed: %s", p.rel(abs))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logf("watch error: %v", err)

		case <-fire:
			fire = nil
			res, err := p.Make(ctx, req)
			if ctx.Err() != nil {
				return nil
			}
			onRender(res, err)
		}
	}
}

// watchTargets returns the absolute paths of the files whose change
// triggers a render.
func (p *Paper) watchTargets(files FileSet) (map[string]bool, error) {
	paths := []string{files.Manuscript, files.CSL, files.Bibliography}
	if p.defaults != "" {
		defaults := p.defaults
		if !filepath.IsAbs(defaults) {
			defaults = p.path(defaults)
		}
		paths = append(paths, defaults)
	}

	targets := make(map[string]bool, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		targets[abs] = true
	}
	return targets, nil
}
