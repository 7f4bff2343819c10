package scan

import (
	"context"
	"sync"
)

// Frame is one camera image waiting for analysis. Done receives the decoded
// code or the decode error on the pipeline goroutine.
type Frame struct {
	Data []byte
	Done func(code string, err error)
}

// Pipeline analyses frames on a single goroutine. It holds at most one
// waiting frame: a newer submission replaces an unprocessed one.
type Pipeline struct {
	decoder Decoder
	slot    chan Frame
	mu      sync.Mutex
}

func NewPipeline(decoder Decoder) *Pipeline {
	return &Pipeline{decoder: decoder, slot: make(chan Frame, 1)}
}

// Submit never blocks. It reports whether a waiting frame was dropped.
func (p *Pipeline) Submit(f Frame) (replaced bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.slot:
		replaced = true
	default:
	}
	p.slot <- f
	return replaced
}

// Run processes frames until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-p.slot:
			code, err := p.decoder.Decode(f.Data)
			if f.Done != nil {
				f.Done(code, err)
			}
		}
	}
}
