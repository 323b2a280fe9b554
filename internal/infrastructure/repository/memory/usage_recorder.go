package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
)

// UsageRecorder collects usage records in memory.
type UsageRecorder struct {
	mu    sync.Mutex
	items []apiusage.Record
}

func NewUsageRecorder() *UsageRecorder {
	return &UsageRecorder{}
}

func (r *UsageRecorder) Append(_ context.Context, item apiusage.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, item)
	return nil
}

// Records returns a copy of everything appended so far.
func (r *UsageRecorder) Records() []apiusage.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]apiusage.Record, len(r.items))
	copy(out, r.items)
	return out
}
