package display

import (
	"errors"
	"sync"

	"github.com/gogpu/lasca"
)

// Discard accepts and drops every mask.
type Discard struct{}

// Display implements lasca.DisplayConsumer.
func (Discard) Display([]uint8, int, int, *lasca.ColorTable) error { return nil }

// Recorder keeps a copy of the latest mask and summary statistics.
type Recorder struct {
	mu     sync.Mutex
	last   []uint8
	count  int
	stats  lasca.MaskStats
	width  int
	height int
}

// Display implements lasca.DisplayConsumer.
func (r *Recorder) Display(mask []uint8, width, height int, _ *lasca.ColorTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = append(r.last[:0], mask...)
	r.width, r.height = width, height
	r.count++
	r.stats = lasca.ComputeMaskStats(mask)
	return nil
}

// Last returns a copy of the most recent mask and its size.
func (r *Recorder) Last() (mask []uint8, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint8(nil), r.last...), r.width, r.height
}

// Count returns the number of masks received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Stats returns the statistics of the most recent mask.
func (r *Recorder) Stats() lasca.MaskStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Multi fans a mask out to several consumers. Every consumer is called;
// errors are joined.
type Multi []lasca.DisplayConsumer

// Display implements lasca.DisplayConsumer.
func (m Multi) Display(mask []uint8, width, height int, table *lasca.ColorTable) error {
	var errs []error
	for _, c := range m {
		if err := c.Display(mask, width, height, table); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
