package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"portfolio-analytics/internal/config"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Init configures the standard logrus logger and returns it
func Init(cfg config.LoggerConfig) *logrus.Logger {
	l := logrus.StandardLogger()
	Configure(l, cfg)
	return l
}

// New returns a separate logger configured from cfg
func New(cfg config.LoggerConfig) *logrus.Logger {
	l := logrus.New()
	Configure(l, cfg)
	return l
}

// Configure applies level, format and output settings to l. Unknown levels
// fall back to info and unknown formats to json.
func Configure(l *logrus.Logger, cfg config.LoggerConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(formatter(cfg.Format))
	l.SetOutput(output(cfg))
}

func formatter(format string) logrus.Formatter {
	if format == "text" {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	}
}

// output picks stdout, a rotated file or both. File outputs without a
// filename fall back to stdout.
func output(cfg config.LoggerConfig) io.Writer {
	if cfg.Filename == "" {
		return os.Stdout
	}
	switch cfg.Output {
	case "file":
		return fileWriter(cfg)
	case "both":
		return io.MultiWriter(os.Stdout, fileWriter(cfg))
	default:
		return os.Stdout
	}
}

func fileWriter(cfg config.LoggerConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
}
