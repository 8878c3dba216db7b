package main

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	todoist "github.com/nicolagi/todoist-rest"
	log "github.com/sirupsen/logrus"
)

// watchState reloads the local data, and all windows, whenever another process dumps its state into dir. The
// checksum file is written last, so that's the one to react to.
func watchState(dir string) {
	logEntry := log.WithField("dir", dir)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not watch state, changes by other programs won't show")
		return
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := os.MkdirAll(dir, 0700); err != nil {
		logEntry.WithField("cause", err).Warning("Could not create state directory")
		return
	}
	if err := watcher.Add(dir); err != nil {
		logEntry.WithField("cause", err).Warning("Could not watch state, changes by other programs won't show")
		return
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != todoist.StateSumFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := client.Load(dir); err != nil {
				logEntry.WithField("cause", err).Warning("Could not reload state written by another program")
				continue
			}
			onStateReloaded()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logEntry.WithField("cause", err).Warning("Watch error")
		}
	}
}
