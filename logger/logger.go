package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InitLoggers()
}

// InitLoggers sets up the shared application loggers. Log files rotate via
// lumberjack; everything is mirrored to stdout/stderr for container runtimes.
func InitLoggers() {
	InfoLogger = newLogger("logs/info.log", logrus.InfoLevel, os.Stdout)
	WarnLogger = newLogger("logs/warn.log", logrus.WarnLevel, os.Stdout)
	ErrorLogger = newLogger("logs/error.log", logrus.ErrorLevel, os.Stderr)
}

func newLogger(filename string, level logrus.Level, console io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	l.SetOutput(io.MultiWriter(console, rotator))
	return l
}
