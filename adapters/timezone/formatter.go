package timezone

import (
	"sync"
	"time"

	"sessionresults/internal"
)

// SessionTimeLayout renders e.g. "Mon, 04 Mar, 2024, 09:00 AM +08"
const SessionTimeLayout = "Mon, 02 Jan, 2006, 03:04 PM MST"

// Formatter renders instants in IANA time zones, caching loaded locations
type Formatter struct {
	layout string
	logger *internal.Logger

	mu        sync.Mutex
	locations map[string]*time.Location
}

// NewFormatter creates a formatter using layout; an empty layout means SessionTimeLayout
func NewFormatter(layout string) *Formatter {
	if layout == "" {
		layout = SessionTimeLayout
	}
	return &Formatter{
		layout:    layout,
		logger:    internal.DefaultLogger.Named("Timezone"),
		locations: make(map[string]*time.Location),
	}
}

// Format renders t in zone. Unknown zones fall back to UTC.
func (f *Formatter) Format(t time.Time, zone string) string {
	return t.In(f.location(zone)).Format(f.layout)
}

func (f *Formatter) location(zone string) *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()

	if loc, ok := f.locations[zone]; ok {
		return loc
	}
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		f.logger.Warn("unknown time zone %q, using UTC", zone)
		loc = time.UTC
	}
	f.locations[zone] = loc
	return loc
}
