package netsrv

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 256

// WorkerFunc processes one task; returning an error kills the tomb.
type WorkerFunc func(t *tomb.Tomb, task any) error

// WorkerPool runs a fixed number of goroutines pulling from a shared task
// channel, adapted from the teacher's internal/worker.go — fixed there so
// that n is actually the requested pool size (the teacher's NewWorkerPool
// never set it, so its Setup loop span zero workers forever) and so that
// AddTask exists, since the teacher's server.go called a method that was
// never defined.
type WorkerPool struct {
	n     int
	tasks chan any
	log   zerolog.Logger
}

func NewWorkerPool(n int, log zerolog.Logger) *WorkerPool {
	return &WorkerPool{n: n, tasks: make(chan any, taskChanSize), log: log}
}

// AddTask enqueues a unit of work for the pool.
func (p *WorkerPool) AddTask(task any) {
	p.tasks <- task
}

// Setup launches the pool's workers under t, each running work for every
// task until the channel closes or t starts dying.
func (p *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunc) {
	for i := 0; i < p.n; i++ {
		id := i
		t.Go(func() error {
			return p.worker(t, id, work)
		})
	}
}

func (p *WorkerPool) worker(t *tomb.Tomb, id int, work WorkerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task, ok := <-p.tasks:
			if !ok {
				return nil
			}
			if err := work(t, task); err != nil {
				p.log.Error().Err(err).Int("worker", id).Msg("worker exiting")
				return err
			}
		}
	}
}
