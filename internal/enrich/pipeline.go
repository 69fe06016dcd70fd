package enrich

import (
	"context"
	"log"
	"sync"
)

// Pipeline coordinates the execution of a sequence of stages. For each item,
// steps within the same stage run in parallel, and stages themselves run
// sequentially. Step errors are logged and do not stop processing.
type Pipeline[T any] struct {
	stages []Stage[T]
}

func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// Process applies Run to every item received from in until the channel is
// closed.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) {
	for item := range in {
		p.Run(ctx, item)
	}
}

// Run applies all stages to a single item and returns once the last stage
// has finished. Stages are skipped once ctx is done; steps already started
// are expected to observe ctx themselves.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) {
	for _, stage := range p.stages {
		if ctx.Err() != nil {
			log.Printf("Pipeline stopped before stage %q: %v", stage.name, ctx.Err())
			return
		}
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					log.Printf("Step in stage %q failed: %v", stage.name, err)
				}
			}(step)
		}
		wg.Wait() // stage barrier
	}
}
