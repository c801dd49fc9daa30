package config

import (
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

var onReloadFns = make([]func(old *MainConfig, new *MainConfig), 0)

// OnReload registers fn to be called after a config file change has been
// applied.
func OnReload(fn func(old *MainConfig, new *MainConfig)) {
	onReloadFns = append(onReloadFns, fn)
}

func Watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = watcher.Add(Path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		debounced := debounce.New(1 * time.Second)
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				debounced(onFileChanged)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.Error("error in config watcher:", err)
			}
		}
	}()

	return watcher, nil
}

func onFileChanged() {
	logrus.Info("Config file change detected - reloading")
	configNow := Get()
	configNew, err := reloadConfig()
	if err != nil {
		logrus.Error("Error reloading configuration - ignoring")
		logrus.Error(err)
		return
	}

	logrus.Info("Applying reloaded config live")
	set(configNew)

	if configNew.Decoding.NumWorkers != configNow.Decoding.NumWorkers {
		logrus.Info("Decode worker count changed - resizing pools")
	}

	for _, fn := range onReloadFns {
		fn(configNow, configNew)
	}
}
