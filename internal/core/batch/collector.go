package batch

import (
	"slices"
	"sync"
)

// Collector accumulates outcomes from any goroutine. Observe, if set, sees each
// outcome under the lock, so observers get a total order.
type Collector struct {
	mu       sync.Mutex
	outcomes []Outcome
	Observe  func(Outcome)
}

// Add records o
func (c *Collector) Add(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
	if c.Observe != nil {
		c.Observe(o)
	}
}

// AddAll records os in order
func (c *Collector) AddAll(os []Outcome) {
	for _, o := range os {
		c.Add(o)
	}
}

// Snapshot is a copy of everything recorded so far, in arrival order
func (c *Collector) Snapshot() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.outcomes)
}

// Counts tallies recorded outcomes by status
func (c *Collector) Counts() map[Status]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[Status]int, 3)
	for _, o := range c.outcomes {
		m[o.Status]++
	}
	return m
}

// Failures returns up to n failed outcomes in arrival order; n <= 0 means all
func (c *Collector) Failures(n int) []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Outcome
	for _, o := range c.outcomes {
		if o.Status != Failed {
			continue
		}
		out = append(out, o)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
