// File: session/registry.go
// Author: momentics <momentics@gmail.com>
//
// Registry assigns process-unique session ids and tracks live sessions.
// Id assignment lives here rather than in a package-level counter so tests
// and embedders can run isolated id spaces.

package session

import (
	"strconv"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/atomic"

	"github.com/momentics/aiosock/api"
)

// Registry is the construction boundary for sessions.
type Registry struct {
	nextID   atomic.Int64
	sessions cmap.ConcurrentMap[string, *Session]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: cmap.New[*Session](),
	}
}

// Open validates cfg, builds a session over channel, registers it, and
// enters its read loop. The returned session is already live.
func (r *Registry) Open(channel api.Channel, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	id := r.nextID.Inc()
	s := newSession(id, channel, cfg, r.remove)
	r.sessions.Set(idKey(id), s)
	s.start()
	return s, nil
}

// Get returns the live session with the given id.
func (r *Registry) Get(id int64) (*Session, bool) {
	return r.sessions.Get(idKey(id))
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Count()
}

// Range applies fn to every live session.
func (r *Registry) Range(fn func(*Session)) {
	for item := range r.sessions.IterBuffered() {
		fn(item.Val)
	}
}

// CloseAll force-closes every live session.
func (r *Registry) CloseAll() {
	r.Range(func(s *Session) { s.Close() })
}

// remove drops a session at close time.
func (r *Registry) remove(s *Session) {
	r.sessions.Remove(idKey(s.id))
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
