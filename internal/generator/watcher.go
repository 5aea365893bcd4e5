package generator

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"

	"codeforge/internal/logging"
)

// TemplateWatcher hot-reloads user template packs when files in the
// templates directory change.
type TemplateWatcher struct {
	registry *TemplateRegistry
	dir      string
	watcher  *fsnotify.Watcher
}

// NewTemplateWatcher starts watching dir for template pack changes.
func NewTemplateWatcher(registry *TemplateRegistry, dir string) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	logging.Templates("watching %s for template changes", dir)
	return &TemplateWatcher{
		registry: registry,
		dir:      dir,
		watcher:  w,
	}, nil
}

// Run processes filesystem events until the context is cancelled.
func (tw *TemplateWatcher) Run(ctx context.Context) {
	defer tw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logging.Templates("template pack changed: %s", event.Name)
			if err := tw.registry.loadFile(event.Name); err != nil {
				logging.Get(logging.CategoryTemplates).Warn("reload of %s failed: %v", event.Name, err)
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryTemplates).Warn("watcher error: %v", err)
		}
	}
}
