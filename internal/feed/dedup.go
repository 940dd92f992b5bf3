package feed

import (
	"time"

	"github.com/securemov/ana-chat/backend/internal/model/chat"
)

// defaultRecentKeys bounds how many live keys a Deduper keeps.
const defaultRecentKeys = 256

// Deduper remembers which messages a listener already has. A listener that
// loads the log and then follows the feed can see the same row twice; Seen
// filters the second copy. Not safe for concurrent use.
//
// Keys from the initial load are only needed while the feed can still replay
// them: they are dropped once a message newer than the newest loaded row
// arrives. Live keys are kept in a fixed-size window.
type Deduper struct {
	initial map[string]struct{}
	cutoff  time.Time

	recent map[string]struct{}
	ring   []string
	next   int
}

// NewDeduper returns a Deduper that already knows initial.
func NewDeduper(initial []chat.Message) *Deduper {
	d := &Deduper{
		recent: make(map[string]struct{}, defaultRecentKeys),
		ring:   make([]string, defaultRecentKeys),
	}
	if len(initial) == 0 {
		return d
	}

	d.initial = make(map[string]struct{}, len(initial))
	for _, m := range initial {
		d.initial[m.Key()] = struct{}{}
		if m.CreatedAt.After(d.cutoff) {
			d.cutoff = m.CreatedAt
		}
	}
	return d
}

// Seen reports whether message was seen before and records it if not.
func (d *Deduper) Seen(message chat.Message) bool {
	key := message.Key()

	if d.initial != nil {
		if _, ok := d.initial[key]; ok {
			return true
		}
		if message.CreatedAt.After(d.cutoff) {
			d.initial = nil
		}
	}

	if _, ok := d.recent[key]; ok {
		return true
	}
	d.remember(key)
	return false
}

func (d *Deduper) remember(key string) {
	if old := d.ring[d.next]; old != "" {
		delete(d.recent, old)
	}
	d.ring[d.next] = key
	d.recent[key] = struct{}{}
	d.next = (d.next + 1) % len(d.ring)
}
