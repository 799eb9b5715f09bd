package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into a single
// execution whose result every waiting caller shares.
type SingleFlight[V any] struct {
	mu    sync.Mutex
	calls map[string]*call[V]
}

type call[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// Do runs fn unless another call with the same key is already in flight, in
// which case it waits for that call and returns its result. The bool reports
// whether the result was shared.
func (g *SingleFlight[V]) Do(key string, fn func() (V, error)) (V, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[V])
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call[V]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err, false
}
