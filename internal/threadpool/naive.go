package threadpool

// NaiveThreadPool spawns a fresh goroutine for every job. It has no steady
// worker count to manage and no queue to bound, trading unbounded
// concurrency for the simplest possible implementation of the contract.
type NaiveThreadPool struct{}

// NewNaiveThreadPool constructs a NaiveThreadPool. It carries no state.
func NewNaiveThreadPool() *NaiveThreadPool {
	return &NaiveThreadPool{}
}

// Spawn runs job in a new goroutine.
func (p *NaiveThreadPool) Spawn(job func()) {
	go job()
}
