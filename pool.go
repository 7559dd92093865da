package qrsheet

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps sheets, each of which may own a browser (~200MB).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// SheetPool manages Sheet instances for parallel batch runs.
// Each sheet has its own rasterizer, enabling true parallelism with the
// Chrome backend. Sheets are created lazily on first acquire.
type SheetPool struct {
	size    int
	opts    []Option
	sheets  []*Sheet
	sem     chan *Sheet
	mu      sync.Mutex
	created int
	closed  bool
}

// NewSheetPool creates a pool with capacity for n sheets built with opts.
// Sheets are created when acquired, not at pool creation.
func NewSheetPool(n int, opts ...Option) *SheetPool {
	if n < 1 {
		n = 1
	}

	return &SheetPool{
		size:   n,
		opts:   opts,
		sheets: make([]*Sheet, 0, n),
		sem:    make(chan *Sheet, n),
	}
}

// Acquire gets a sheet from the pool, creating one if needed.
// Blocks if all sheets are in use.
func (p *SheetPool) Acquire() (*Sheet, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrSheetClosed
	}

	select {
	case s, ok := <-p.sem:
		if !ok {
			return nil, ErrSheetClosed
		}
		return s, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrSheetClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock.
		s, err := NewSheet(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.sheets = append(p.sheets, s)
		p.mu.Unlock()

		return s, nil
	}
	p.mu.Unlock()

	// All sheets created, wait for one to be released.
	s, ok := <-p.sem
	if !ok {
		return nil, ErrSheetClosed
	}
	return s, nil
}

// Release returns a sheet to the pool. It never blocks: the send happens
// under the lock so Close cannot close the channel in between, and a sheet
// released twice is not queued again once the buffer is full.
func (p *SheetPool) Release(s *Sheet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- s:
	default:
	}
}

// Close releases all sheets.
// Returns an aggregated error if multiple sheets fail to close.
func (p *SheetPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	sheets := p.sheets
	p.mu.Unlock()

	var errs []error
	for _, s := range sheets {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *SheetPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
