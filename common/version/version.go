package version

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Set at link time; empty values are filled from the embedded build info.
var GitCommit string
var Version string

type BuildInfo struct {
	Version   string
	Commit    string
	GoVersion string
	Modified  bool
}

func Read() BuildInfo {
	info := BuildInfo{Version: Version, Commit: GitCommit, GoVersion: "unknown"}
	if build, ok := debug.ReadBuildInfo(); ok {
		info = info.fill(build)
	}
	if info.Version == "" {
		info.Version = "unknown"
	}
	if info.Commit == "" {
		info.Commit = ".dev"
	}
	return info
}

func (i BuildInfo) fill(build *debug.BuildInfo) BuildInfo {
	i.GoVersion = build.GoVersion
	if i.Version == "" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		i.Version = build.Main.Version
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = setting.Value
			}
		case "vcs.modified":
			i.Modified = setting.Value == "true"
		}
	}
	return i
}

// String is the release name sent with error reports.
func (i BuildInfo) String() string {
	s := fmt.Sprintf("%s-%s", i.Version, i.Commit)
	if i.Modified {
		s += "-dirty"
	}
	return s
}

func (i BuildInfo) Fields() logrus.Fields {
	return logrus.Fields{
		"version": i.Version,
		"commit":  i.Commit,
		"go":      i.GoVersion,
	}
}

func String() string {
	return Read().String()
}

func Log() {
	logrus.WithFields(Read().Fields()).Info("Starting colorimage decoder")
}
