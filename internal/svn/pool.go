package svn

import "sync"

// Factory constructs a new backend client with its credentials already
// attached.
type Factory func() Client

// Pool amortizes client construction across operations. Acquire never blocks:
// if no idle client is available a new one is built, so growth is bounded
// only by caller concurrency. Clients are opaque to callers and must be
// released exactly once per acquire.
type Pool struct {
	mu        sync.Mutex
	idle      []Client
	newClient Factory
}

// NewPool creates an empty pool that builds clients with f on demand.
func NewPool(f Factory) *Pool {
	return &Pool{newClient: f}
}

// Acquire returns an idle client, or a freshly constructed one if none is
// available. Safe for concurrent use.
func (p *Pool) Acquire() Client {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c
	}
	p.mu.Unlock()
	return p.newClient()
}

// Release returns a client to the idle set for reuse.
func (p *Pool) Release(c Client) {
	p.mu.Lock()
	p.idle = append(p.idle, c)
	p.mu.Unlock()
}

// With runs fn with a borrowed client, releasing it on every exit path.
func (p *Pool) With(fn func(Client) error) error {
	c := p.Acquire()
	defer p.Release(c)
	return fn(c)
}

// idleCount reports the current size of the idle set.
func (p *Pool) idleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
