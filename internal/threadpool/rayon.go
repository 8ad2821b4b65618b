package threadpool

import "go.uber.org/zap"

// RayonThreadPool stands in for a work-stealing pool modeled on Rust's
// rayon crate. Go has no built-in work-stealing scheduler primitive to
// build one on top of, so this is an adaptor over SharedQueueThreadPool:
// it satisfies the same contract and the same panic-respawn guarantee,
// documented here as a deliberate simplification rather than a genuine
// work-stealing implementation.
type RayonThreadPool struct {
	inner *SharedQueueThreadPool
}

// NewRayonThreadPool builds a RayonThreadPool backed by workers
// goroutines.
func NewRayonThreadPool(workers int, log *zap.SugaredLogger) *RayonThreadPool {
	return &RayonThreadPool{inner: NewSharedQueueThreadPool(workers, log)}
}

// Spawn delegates to the wrapped shared-queue pool.
func (p *RayonThreadPool) Spawn(job func()) {
	p.inner.Spawn(job)
}
