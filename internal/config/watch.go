package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the settings file whenever it changes on disk and hands the
// new snapshot to fn. Files that fail to decode or validate go to onErr and
// the previous snapshot stays in effect. fn and onErr run on the watcher's
// goroutine.
//
// The watch lives until the process exits.
func Watch(path string, fn func(Settings), onErr func(error)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s, err := decode(v)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("%s: %w", e.Name, err))
			}
			return
		}
		fn(s)
	})
	v.WatchConfig()
	return nil
}
