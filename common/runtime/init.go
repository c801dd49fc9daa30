package runtime

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/common/config"
	"github.com/t2bot/colorimage/common/logging"
	"github.com/t2bot/colorimage/common/version"
	"github.com/t2bot/colorimage/decoder"
)

// Runtime holds the process-wide pieces an embedding program sets up once.
type Runtime struct {
	Pool    *decoder.Pool
	watcher *fsnotify.Watcher
}

// Start sets up error reporting, logging and a decode pool from the current
// config. When watch is set, config file changes are applied while running.
func Start(watch bool) (*Runtime, error) {
	c := config.Get()
	if c.Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         c.Sentry.Dsn,
			Environment: c.Sentry.Environment,
			Debug:       c.Sentry.Debug,
			Release:     version.String(),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := setupLogging(c.Logging); err != nil {
		return nil, err
	}
	version.Log()

	logrus.Infof("Starting decode pool with %d workers...", c.Decoding.NumWorkers)
	rt := &Runtime{Pool: decoder.NewPool(c.Decoding)}

	if watch {
		logrus.Info("Starting config watcher...")
		watcher, err := config.Watch()
		if err != nil {
			rt.Pool.Close()
			return nil, err
		}
		rt.watcher = watcher
		rt.Pool.WatchConfig()
		config.OnReload(func(old *config.MainConfig, new *config.MainConfig) {
			if old.Logging != new.Logging {
				logrus.Info("Logging config changed - reconfiguring")
				if err := setupLogging(new.Logging); err != nil {
					sentry.CaptureException(err)
					logrus.Error("Error applying new logging config: ", err)
				}
			}
		})
	}

	return rt, nil
}

func setupLogging(c config.LoggingConfig) error {
	return logging.Setup(c)
}

func (r *Runtime) Stop() {
	if r.watcher != nil {
		logrus.Info("Stopping config watcher...")
		_ = r.watcher.Close()
	}
	r.Pool.Close()
	sentry.Flush(2 * time.Second)
}
