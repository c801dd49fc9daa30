package config

import (
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var Path = "colorimage.yaml"

var instance *MainConfig
var singletonLock = &sync.Once{}
var instanceLock = &sync.RWMutex{}

func reloadConfig() (*MainConfig, error) {
	c := NewDefaultConfig()

	info, err := os.Stat(Path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Info("No config file at ", Path, " - using defaults")
			return &c, nil
		}
		return nil, err
	}

	pathsOrdered := make([]string, 0)
	if info.IsDir() {
		logrus.Info("Config is a directory - loading all files over top of each other")

		files, err := os.ReadDir(Path)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			if f.IsDir() || !(glob.Glob("*.yaml", f.Name()) || glob.Glob("*.yml", f.Name())) {
				continue
			}
			pathsOrdered = append(pathsOrdered, path.Join(Path, f.Name()))
		}

		sort.Strings(pathsOrdered)
	} else {
		pathsOrdered = append(pathsOrdered, Path)
	}

	for _, p := range pathsOrdered {
		logrus.Info("Loading config file: ", p)
		buffer, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}

		err = yaml.Unmarshal(buffer, &c)
		if err != nil {
			return nil, fmt.Errorf("config: error parsing %s: %w", p, err)
		}
	}

	if err = c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *MainConfig) validate() error {
	if c.Decoding.MaxInputBytes < 0 {
		return fmt.Errorf("config: decoding.maxInputBytes must not be negative")
	}
	if c.Decoding.MaxPixels < 0 {
		return fmt.Errorf("config: decoding.maxPixels must not be negative")
	}
	if c.Decoding.NumWorkers <= 0 {
		c.Decoding.NumWorkers = 1
	}
	return nil
}

func Get() *MainConfig {
	singletonLock.Do(func() {
		c, err := reloadConfig()
		if err != nil {
			logrus.Fatal(err)
		}
		instanceLock.Lock()
		if instance == nil {
			instance = c
		}
		instanceLock.Unlock()
	})
	instanceLock.RLock()
	defer instanceLock.RUnlock()
	return instance
}

// SetForTesting replaces the active configuration without touching disk.
func SetForTesting(c MainConfig) {
	singletonLock.Do(func() {})
	instanceLock.Lock()
	instance = &c
	instanceLock.Unlock()
}

func set(c *MainConfig) {
	instanceLock.Lock()
	instance = c
	instanceLock.Unlock()
}
