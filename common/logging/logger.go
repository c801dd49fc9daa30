package logging

import (
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/common/config"
)

const timestampFormat = "2006-01-02 15:04:05.000 Z07:00"
const fileName = "colorimage.log"

var fileLock = &sync.Mutex{}
var openFile io.Closer

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

func newFormatter(c config.LoggingConfig) logrus.Formatter {
	if c.JSON {
		return &utcFormatter{&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		}}
	}
	return &utcFormatter{&logrus.TextFormatter{
		TimestampFormat:  timestampFormat,
		FullTimestamp:    true,
		ForceColors:      c.Colors,
		DisableColors:    !c.Colors,
		QuoteEmptyFields: true,
	}}
}

// Setup configures the standard logger. It may be called again when the
// config changes: file hooks from an earlier call are removed and their
// files closed.
func Setup(c config.LoggingConfig) error {
	level := c.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	formatter := newFormatter(c)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(formatter)
	logrus.SetOutput(os.Stdout)

	fileLock.Lock()
	defer fileLock.Unlock()
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	if openFile != nil {
		_ = openFile.Close()
		openFile = nil
	}

	if c.Directory == "" || c.Directory == "-" {
		return nil
	}
	if err = os.MkdirAll(c.Directory, os.ModePerm); err != nil {
		return err
	}

	logFile := path.Join(c.Directory, fileName)
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithMaxAge((24*time.Hour)*14),  // keep for 14 days
		rotatelogs.WithRotationTime(24*time.Hour), // rotate every 24 hours
	)
	if err != nil {
		return err
	}
	openFile = writer

	logrus.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, formatter))

	return nil
}
