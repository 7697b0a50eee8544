package renderer

// Scope collects release functions for resources acquired during a mount and
// runs them exactly once, newest first, when closed.
type Scope struct {
	releases []func()
	closed   bool
}

// Acquire registers release to run when the scope closes. If the scope is
// already closed, release runs immediately.
func (s *Scope) Acquire(release func()) {
	if release == nil {
		return
	}
	if s.closed {
		release()
		return
	}
	s.releases = append(s.releases, release)
}

// Close releases everything acquired so far. Subsequent calls are no-ops.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// Len returns the number of resources still held.
func (s *Scope) Len() int {
	return len(s.releases)
}
