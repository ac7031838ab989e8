package worker

import (
	"context"
	"sync"

	"github.com/nattawatp/quakewatch/internal/models"
)

// ProcessFunc handles one fetched earthquake record.
type ProcessFunc func(ctx context.Context, eq *models.Earthquake) error

// Pool fans fetched records out to a fixed set of workers over a bounded
// channel, decoupling poll cadence from store latency.
type Pool struct {
	numWorkers int
	records    chan *models.Earthquake
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		records:    make(chan *models.Earthquake, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case eq, ok := <-p.records:
			if !ok {
				return
			}
			p.processor(ctx, eq)
		}
	}
}

func (p *Pool) Submit(eq *models.Earthquake) {
	p.records <- eq
}

func (p *Pool) Stop() {
	close(p.records)
	p.wg.Wait()
}
