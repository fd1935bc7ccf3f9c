package qpactconfig

import (
	"github.com/fsnotify/fsnotify"

	"github.com/qpact/qpact"
)

// ConfigChangedSig is posted to Watcher's target whenever the watched file
// is rewritten. Applications that want to react to a config reload
// dispatch this signal like any other application event.
const ConfigChangedSig qpact.Signal = qpact.UserSig + 900

// Watcher re-feeds cfg from path whenever fsnotify reports the file was
// written, then posts ConfigChangedSig to target carrying the freshly
// loaded Config as payload. Grounded on GoCodeAlone-modular's use of
// fsnotify to drive live config reload (config/watcher.go).
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	feeder  Feeder
	target  *qpact.ActiveObject
	logger  qpact.Logger
	done    chan struct{}
}

// NewWatcher arms an fsnotify watch on path. feeder is typically a
// TOMLFeeder or YAMLFeeder pointed at the same path.
func NewWatcher(path string, feeder Feeder, target *qpact.ActiveObject, logger qpact.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}
	w := &Watcher{watcher: fsw, path: path, feeder: feeder, target: target, logger: logger, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.feeder)
			if err != nil {
				w.logger.Error("qpactconfig: reload failed", "path", w.path, "error", err)
				continue
			}
			if err := w.target.PostFIFO(qpact.NewEvent(ConfigChangedSig, cfg)); err != nil {
				w.logger.Warn("qpactconfig: could not post reload event", "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("qpactconfig: watch error", "error", err)
		}
	}
}

// Close stops the watch.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
