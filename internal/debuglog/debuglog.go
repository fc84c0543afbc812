// Package debuglog writes structured debug events as JSON lines.
//
// Logging is off until Init is called with enabled set; every Log call is a
// no-op otherwise, so callers never need to guard their calls.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultPath is used when no debug log path is configured.
const DefaultPath = "cuida-debug.log"

// Logger writes one JSON object per line.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	enabled bool
	seq     int
}

var (
	globalMu sync.RWMutex
	global   *Logger
)

// Init opens path (or DefaultPath when empty) and makes it the global log.
func Init(path string, enabled bool) error {
	if !enabled {
		setGlobal(&Logger{})
		return nil
	}

	if path == "" {
		path = DefaultPath
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating debug log: %w", err)
	}

	l := &Logger{w: f, closer: f, enabled: true}
	setGlobal(l)

	l.Log("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     time.Now().Format(time.RFC3339),
	})
	return nil
}

// InitWriter makes w the global log destination.
func InitWriter(w io.Writer) *Logger {
	l := New(w)
	setGlobal(l)
	return l
}

// New returns an enabled logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, enabled: w != nil}
}

// Close ends the global log and closes its file, if any.
func Close() {
	globalMu.Lock()
	l := global
	global = nil
	globalMu.Unlock()

	if l == nil || !l.enabled {
		return
	}
	l.Log("DEBUG_END", map[string]any{
		"time": time.Now().Format(time.RFC3339),
	})
	if l.closer != nil {
		_ = l.closer.Close()
	}
}

func setGlobal(l *Logger) {
	globalMu.Lock()
	prev := global
	global = l
	globalMu.Unlock()

	if prev != nil && prev.closer != nil {
		_ = prev.closer.Close()
	}
}

// Enabled reports whether the global log is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global != nil && global.enabled
}

// Log writes an event to the global log.
func Log(event string, data map[string]any) {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	l.Log(event, data)
}

// Error logs err under the ERROR event with a short context label.
func Error(context string, err error) {
	if err == nil {
		return
	}
	Log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}

// Log writes a structured entry.
func (l *Logger) Log(event string, data map[string]any) {
	if l == nil || !l.enabled || l.w == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := map[string]any{
		"seq":   l.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(l.w, "%s\n", b)
}

// Truncate shortens s to at most max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
