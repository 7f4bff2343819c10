// Package scan turns camera frames and scanner input into barcode values.
package scan

import (
	"sync"
	"time"
)

// DefaultWindow is how long a repeated detection of the same code is ignored.
const DefaultWindow = 1500 * time.Millisecond

type lastScan struct {
	code string
	at   time.Time
}

// Debouncer suppresses repeated detections of one code per key (a user
// session). A different code always passes.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]lastScan
}

func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, now: time.Now, last: map[string]lastScan{}}
}

// Allow reports whether code should be emitted for key. The window starts
// at the last emitted detection; suppressed ones do not extend it.
func (d *Debouncer) Allow(key, code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if prev, ok := d.last[key]; ok && prev.code == code && now.Sub(prev.at) < d.window {
		return false
	}
	d.last[key] = lastScan{code: code, at: now}
	return true
}

// Reset forgets the last detection for key.
func (d *Debouncer) Reset(key string) {
	d.mu.Lock()
	delete(d.last, key)
	d.mu.Unlock()
}
