package library

import (
	"sync"

	"github.com/alanyang/promptshelf/internal/domain/principal"
)

// sequencer tracks the highest search sequence number seen per session so a
// slow response to an older keystroke cannot overwrite a newer one.
type sequencer struct {
	mu   sync.Mutex
	last map[string]int64
}

func newSequencer() *sequencer {
	return &sequencer{last: make(map[string]int64)}
}

// sequenceKey scopes counters to the session, so tabs and devices of one user
// each keep their own. Tokens without a session fall back to the principal.
func sequenceKey(p principal.Principal) string {
	if p.SessionID != "" {
		return "session:" + p.SessionID
	}
	return p.ID.String()
}

// observe records seq and reports whether it is still the latest.
// Zero or negative seq opts out of sequencing.
func (s *sequencer) observe(key string, seq int64) bool {
	if seq <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.last[key] {
		return false
	}
	s.last[key] = seq
	return true
}

// current reports whether seq has not been overtaken since it was observed.
func (s *sequencer) current(key string, seq int64) bool {
	if seq <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq >= s.last[key]
}

func (s *sequencer) forget(key string) {
	s.mu.Lock()
	delete(s.last, key)
	s.mu.Unlock()
}
