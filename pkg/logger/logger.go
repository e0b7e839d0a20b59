// Package logger exposes the process-wide structured logger used across the
// launcher. One launch attempt is one process, so a single shared instance
// is the natural scope.
package logger

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger wraps charmbracelet/log with the launcher's level plumbing.
type Logger struct {
	*log.Logger
}

var (
	instance *Logger
	once     sync.Once
)

// GetLogger returns the shared logger. The first caller initializes it at
// info level with timestamps; configuration raises or lowers it afterwards.
func GetLogger() *Logger {
	once.Do(func() {
		instance = &Logger{
			Logger: log.NewWithOptions(os.Stderr, log.Options{
				Level:           log.InfoLevel,
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
			}),
		}
	})
	return instance
}

// SetLogLevel applies a level by name. Unknown names fall back to info so a
// config typo never silences the launcher.
func (l *Logger) SetLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	l.SetLevel(parsed)
	log.SetLevel(parsed)
}

// ConfigureFromEnv applies STEVEDORE_LOG_LEVEL before any config file is
// read, so configuration loading itself can be debugged.
func (l *Logger) ConfigureFromEnv() {
	if level := os.Getenv("STEVEDORE_LOG_LEVEL"); level != "" {
		l.SetLogLevel(level)
	}
}
