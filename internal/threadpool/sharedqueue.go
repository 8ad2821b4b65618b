package threadpool

import (
	"go.uber.org/zap"
)

// SharedQueueThreadPool runs jobs on a fixed set of worker goroutines
// draining a single shared channel. A worker that panics while running a
// job is replaced immediately by a fresh one, so the pool's worker count
// never shrinks — this is the behavior the thread-pool contract requires
// when a misbehaving job must not take down the whole pool's capacity.
type SharedQueueThreadPool struct {
	jobs chan func()
	log  *zap.SugaredLogger
}

// NewSharedQueueThreadPool starts workers goroutines draining a shared,
// unbuffered job channel.
func NewSharedQueueThreadPool(workers int, log *zap.SugaredLogger) *SharedQueueThreadPool {
	if workers < 1 {
		workers = 1
	}

	p := &SharedQueueThreadPool{jobs: make(chan func()), log: log}
	for i := 0; i < workers; i++ {
		p.spawnWorker()
	}
	return p
}

// Spawn hands job to whichever worker is next free. The job channel is
// unbuffered, so Spawn blocks until a worker receives the job.
func (p *SharedQueueThreadPool) Spawn(job func()) {
	p.jobs <- job
}

// spawnWorker starts one worker goroutine that runs jobs from the shared
// channel, respawning itself if a job panics. The pool has no shutdown
// method and never closes the channel, so workers run for the life of the
// process.
func (p *SharedQueueThreadPool) spawnWorker() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Errorw("thread pool worker recovered from panic, respawning", "panic", r)
				p.spawnWorker()
			}
		}()

		for job := range p.jobs {
			job()
		}
	}()
}
