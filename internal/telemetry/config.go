package telemetry

import (
	"os"
	"sync"
)

// DefaultEventsPath is where events land unless configured otherwise.
const DefaultEventsPath = ".agent/events.jsonl"

var (
	mu             sync.RWMutex
	observeEnabled bool
	eventsPath     = DefaultEventsPath
)

func init() {
	// Read once at process start; Configure overrides it.
	observeEnabled = os.Getenv("AGT_OBSERVE_JSON") == "1"
	if p := os.Getenv("AGT_EVENTS_PATH"); p != "" {
		eventsPath = p
	}
}

// Configure sets emission and the JSONL destination. An empty path keeps the
// current one.
func Configure(enabled bool, path string) {
	mu.Lock()
	defer mu.Unlock()
	observeEnabled = enabled
	if path != "" {
		eventsPath = path
	}
}

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	// Allow tests to enable mid-run via env override.
	if os.Getenv("AGT_OBSERVE_JSON") == "1" {
		return true
	}
	mu.RLock()
	defer mu.RUnlock()
	return observeEnabled
}

// EventsPath returns the JSONL destination.
func EventsPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return eventsPath
}
