package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

const defaultLogFile = "/tmp/subspace-debug.log"

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Init points the logger at the given file. It must run before the first GetLogger call
// to take effect; later calls replace the logger.
func Init(path string) error {
	if path == "" {
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	SetOutput(f)
	return nil
}

// SetOutput replaces the logger with one writing to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// GetLogger returns a singleton slog logger instance
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		f, err := os.OpenFile(defaultLogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			logger = newLogger(io.Discard)
		} else {
			logger = newLogger(f)
		}
	}
	return logger
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
}
