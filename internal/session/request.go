package session

import "context"

// requestScope hands out cancellable contexts tagged with a generation.
// Renewing the scope cancels every request of the previous generation, and
// results that carry an old generation are ignored when they come back.
type requestScope struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// renew starts a new generation derived from parent
func (s *requestScope) renew(parent context.Context) (uint64, context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if parent == nil {
		parent = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	s.gen++
	return s.gen, s.ctx
}

// current returns the live generation, starting one if the scope is stopped
func (s *requestScope) current(parent context.Context) (uint64, context.Context) {
	if s.ctx == nil || s.ctx.Err() != nil {
		return s.renew(parent)
	}
	return s.gen, s.ctx
}

func (s *requestScope) valid(gen uint64) bool {
	return gen != 0 && gen == s.gen && s.ctx != nil
}

// stop cancels outstanding requests and invalidates their results
func (s *requestScope) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = nil, nil
	s.gen++
}
