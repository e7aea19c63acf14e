package server

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 150 * time.Millisecond

// watchTemplates watches the configured paths and broadcasts a reload frame
// when template files change. Returns a stop function.
func (s *Server) watchTemplates(ctx context.Context) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range s.cfg.Dev.Watch {
		if err := watcher.Add(path); err != nil {
			s.log.Warn("watch path skipped", "path", path, "err", err)
		}
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				s.log.Debug("template changed", "path", ev.Name, "op", ev.Op.String())
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, s.broadcastReload)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("watch error", "err", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
