package generate

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hack4good/ideadex/internal/storage"
)

const regenerateDebounce = 500 * time.Millisecond

// Watch runs the pipeline once, then re-runs it whenever proposal exports
// change on disk, debounced so bursts of events (editor saves, git checkouts)
// collapse into one regeneration. Returns when ctx is cancelled.
func (p *Pipeline) Watch(ctx context.Context) error {
	if err := p.Run(ctx); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := p.store.Root()
	if err := watchDirsRecursive(w, root); err != nil {
		return err
	}
	p.logger.Info("watching for proposal changes", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(regenerateDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(regenerateDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerCh:
			if err := p.Run(ctx); err != nil {
				p.logger.Error("regeneration failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := watchDirsRecursive(w, ev.Name); addErr != nil {
						p.logger.Warn("watch new dir failed", slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			if !storage.IsProposalPath(filepath.ToSlash(rel)) {
				continue
			}
			p.logger.Debug("proposal change detected", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule()

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", slog.String("error", werr.Error()))
		}
	}
}

func watchDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
