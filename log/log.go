package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup routes logs to a rotating file, or to the console with debug level
// when debugMode is true.
func Setup(logFilePath string, debugMode bool) {
	slog.SetDefault(slog.New(newHandler(logFilePath, debugMode, os.Stderr)))
}

func newHandler(logFilePath string, debugMode bool, console io.Writer) slog.Handler {
	if debugMode || logFilePath == "" {
		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}
		return tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	return slog.NewTextHandler(&lumberjack.Logger{
		Filename:   logFilePath,
		MaxBackups: 3,
		MaxAge:     28, //days
	}, nil)
}

func Println(v ...interface{}) {
	slog.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Debug logs structured key value pairs at debug level.
func Debug(msg string, args ...interface{}) {
	slog.Debug(msg, args...)
}

// Error logs structured key value pairs at error level.
func Error(msg string, args ...interface{}) {
	slog.Error(msg, args...)
}

func Fatal(v ...interface{}) {
	slog.Error(fmt.Sprint(v...))
	os.Exit(1)
}
