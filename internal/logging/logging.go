package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus with rotated file output. Transaction ids are logged
// inline in messages.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger writing to stdout and a size-rotated file under dir.
// An empty dir keeps output on stdout only.
func New(dir, level string) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "notification-core.log"),
			MaxSize:    100, // megabytes
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}

	return &Logger{Logger: l}, nil
}

// NewNop returns a logger that discards everything. Test helper.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}
