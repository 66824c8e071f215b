// Package log provides the shared debug logger. Messages are buffered in
// memory until a destination file is chosen (--debug-log), then flushed;
// without a destination the buffer is dropped on Close.
package log

import (
	"log"
	"os"
	"sync"
)

// debugWriter implements io.Writer so it can back a standard log.Logger.
// Writes go to the file when one is set, otherwise into the buffer.
type debugWriter struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
}

var defaultWriter = &debugWriter{}

// stdLogger adds the usual timestamp prefix on top of defaultWriter.
var stdLogger = log.New(defaultWriter, "", log.LstdFlags|log.Lmicroseconds)

// Write implements io.Writer.
func (w *debugWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.discard {
		return len(p), nil
	}

	if w.file != nil {
		n, err = w.file.Write(p)
		// Sync so a crash mid-pipeline still leaves the trail on disk.
		_ = w.file.Sync()
		return n, err
	}

	// The caller may reuse p, so keep our own copy.
	b := make([]byte, len(p))
	copy(b, p)
	w.buffer = append(w.buffer, b...)
	return len(p), nil
}

// SetFile directs debug output to path, creating the file if needed and
// flushing anything buffered so far. An empty path disables logging and
// drops the buffer.
func SetFile(path string) error {
	defaultWriter.mu.Lock()
	defer defaultWriter.mu.Unlock()

	if defaultWriter.file != nil {
		_ = defaultWriter.file.Close()
		defaultWriter.file = nil
	}

	if path == "" {
		defaultWriter.discard = true
		defaultWriter.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		defaultWriter.discard = true
		defaultWriter.buffer = nil
		return err
	}

	defaultWriter.file = f
	defaultWriter.discard = false

	if len(defaultWriter.buffer) > 0 {
		_, _ = f.Write(defaultWriter.buffer)
		_ = f.Sync()
		defaultWriter.buffer = nil
	}

	return nil
}

// Printf writes a formatted debug message via the standard logger.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a debug message via the standard logger.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Close closes the debug log file if open.
func Close() error {
	defaultWriter.mu.Lock()
	defer defaultWriter.mu.Unlock()

	if defaultWriter.file == nil {
		return nil
	}

	err := defaultWriter.file.Close()
	defaultWriter.file = nil
	return err
}
