// Package logging configures the structured logger shared by every
// component.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	base    *log.Logger
	derived []*log.Logger
)

func root() *log.Logger {
	if base == nil {
		base = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "scene",
		})
	}
	return base
}

// New returns a logger tagged with component. Loggers returned by New follow
// later SetLevel and SetOutput calls.
func New(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := root().WithPrefix("scene/" + component)
	derived = append(derived, l)
	return l
}

// SetLevel parses a level name such as "debug" or "warn" and applies it to
// every logger.
func SetLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}

	mu.Lock()
	defer mu.Unlock()
	root().SetLevel(level)
	for _, l := range derived {
		l.SetLevel(level)
	}
	return nil
}

// SetOutput redirects every logger, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root().SetOutput(w)
	for _, l := range derived {
		l.SetOutput(w)
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
