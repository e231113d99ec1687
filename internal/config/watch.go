package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terragen/internal/logger"
)

// Watcher polls a config file and delivers validated snapshots whenever the
// file changes. Invalid revisions are logged and skipped so a half-saved file
// never reaches the generator.
type Watcher struct {
	path     string
	interval time.Duration

	changes chan Config
	done    chan struct{}

	mu      sync.Mutex
	modTime time.Time
	size    int64
	closed  bool
}

// DefaultWatchInterval is how often the config file is polled.
const DefaultWatchInterval = 500 * time.Millisecond

// Watch starts polling path. The file must exist and hold a valid config.
func Watch(path string, interval time.Duration) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("watching config %s: %w", path, err)
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	w := &Watcher{
		path:     path,
		interval: interval,
		changes:  make(chan Config, 1),
		done:     make(chan struct{}),
		modTime:  info.ModTime(),
		size:     info.Size(),
	}
	go w.poll()
	return w, nil
}

// Changes returns the channel of config snapshots. Only the most recent
// unconsumed snapshot is retained; intermediate revisions are coalesced.
func (w *Watcher) Changes() <-chan Config {
	return w.changes
}

// Close stops polling. The changes channel is not closed so a late reader
// never observes a spurious zero Config.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.done)
	}
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		// File temporarily missing during an atomic save; try again next tick.
		return
	}

	w.mu.Lock()
	unchanged := info.ModTime().Equal(w.modTime) && info.Size() == w.size
	if !unchanged {
		w.modTime = info.ModTime()
		w.size = info.Size()
	}
	w.mu.Unlock()
	if unchanged {
		return
	}

	cfg := Default()
	if err := loadFromFile(cfg, w.path); err != nil {
		logger.Warn("config reload failed, keeping previous", zap.String("path", w.path), zap.Error(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.publish(cfg.Snapshot())
	logger.Info("config reloaded", zap.String("path", w.path))
}

// publish replaces any pending snapshot with the newest one.
func (w *Watcher) publish(snap Config) {
	for {
		select {
		case w.changes <- snap:
			return
		default:
			select {
			case <-w.changes:
			default:
			}
		}
	}
}
