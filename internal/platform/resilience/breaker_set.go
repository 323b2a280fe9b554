package resilience

import "sync"

// BreakerSet holds one lazily created CircuitBreaker per named upstream, all
// sharing the same configuration. A breaker tripping for one league feed must
// never block calls to another, so breakers are fully independent.
type BreakerSet struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

func NewBreakerSet(cfg CircuitBreakerConfig) *BreakerSet {
	return &BreakerSet{
		cfg:      NormalizeCircuitBreakerConfig(cfg),
		breakers: make(map[string]*CircuitBreaker),
	}
}

// For returns the breaker for name, creating it on first use. Returns nil
// when breakers are disabled; callers treat nil as always-allow.
func (s *BreakerSet) For(name string) *CircuitBreaker {
	if s == nil || !s.cfg.Enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[name]
	if !ok {
		b = NewCircuitBreaker(s.cfg.FailureThreshold, s.cfg.OpenTimeout, s.cfg.HalfOpenMaxReq)
		s.breakers[name] = b
	}
	return b
}
