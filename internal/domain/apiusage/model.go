package apiusage

import "time"

// Record is one append-only audit row per upstream call attempt. Written
// once, never mutated.
type Record struct {
	League      string
	Endpoint    string
	Timestamp   time.Time
	Success     bool
	LatencyMS   int64
	ErrorDetail string
}

// Stats summarizes recent usage for one league source.
type Stats struct {
	RequestsLastMinute int
	RequestsToday      int
	MaxPerMinute       int
}
