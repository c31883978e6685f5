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

// InitLoggers sets up the shared logrus instances. Log files rotate via
// lumberjack; everything is mirrored to stdout/stderr for container logs.
func InitLoggers() {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		// Fall back to console-only logging.
		logDir = ""
	}

	InfoLogger = newLogger(logDir, "info.log", logrus.InfoLevel, os.Stdout)
	WarnLogger = newLogger(logDir, "warn.log", logrus.WarnLevel, os.Stdout)
	ErrorLogger = newLogger(logDir, "error.log", logrus.ErrorLevel, os.Stderr)
}

func newLogger(dir, file string, level logrus.Level, console io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if dir == "" {
		l.SetOutput(console)
		return l
	}

	rotator := &lumberjack.Logger{
		Filename:   dir + "/" + file,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(console, rotator))
	return l
}
