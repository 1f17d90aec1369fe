// Package testutil provides slog capture helpers so package tests can
// assert on log messages and attributes.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// Record is one captured log entry.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// capture is the sink shared by a CaptureHandler and every handler
// derived from it via WithAttrs or WithGroup.
type capture struct {
	mu      sync.Mutex
	records []Record
	t       *testing.T
}

// CaptureHandler is a slog.Handler that records every log entry.
// Handlers derived with WithAttrs carry their bound attributes into each
// record, and WithGroup qualifies attribute keys with a dotted path.
type CaptureHandler struct {
	sink   *capture
	bound  []boundAttr
	groups []string
}

type boundAttr struct {
	key   string
	value any
}

// NewCaptureHandler returns a handler that records all levels. Records
// are echoed to t.Logf when t is non-nil.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{sink: &capture{t: t}}
}

// NewLogger returns a logger backed by a fresh CaptureHandler, along
// with the handler for assertions.
func NewLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	handler := NewCaptureHandler(t)
	return slog.New(handler), handler
}

// Enabled implements slog.Handler. Every level is captured.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.bound))
	for _, a := range h.bound {
		attrs[a.key] = a.value
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.qualify(a.Key)] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.records = append(h.sink.records, Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	if h.sink.t != nil {
		h.sink.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. The derived handler shares the sink
// and stamps the bound attributes onto every record it handles.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = make([]boundAttr, 0, len(h.bound)+len(attrs))
	clone.bound = append(clone.bound, h.bound...)
	for _, a := range attrs {
		clone.bound = append(clone.bound, boundAttr{key: h.qualify(a.Key), value: a.Value.Any()})
	}
	return &clone
}

// WithGroup implements slog.Handler.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = make([]string, 0, len(h.groups)+1)
	clone.groups = append(clone.groups, h.groups...)
	clone.groups = append(clone.groups, name)
	return &clone
}

func (h *CaptureHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// Records returns a copy of every captured record.
func (h *CaptureHandler) Records() []Record {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	records := make([]Record, len(h.sink.records))
	copy(records, h.sink.records)
	return records
}

// ByLevel returns the captured records at exactly the given level.
func (h *CaptureHandler) ByLevel(level slog.Level) []Record {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	var filtered []Record
	for _, r := range h.sink.records {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage reports whether any record's message contains the
// given substring.
func (h *CaptureHandler) ContainsMessage(message string) bool {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	for _, r := range h.sink.records {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries the attribute with the
// given value.
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	for _, r := range h.sink.records {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Count returns the number of captured records.
func (h *CaptureHandler) Count() int {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return len(h.sink.records)
}

// Clear drops all captured records.
func (h *CaptureHandler) Clear() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.records = h.sink.records[:0]
}
