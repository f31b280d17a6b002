package registration

import "sync"

// Accumulator holds accepted declarations in encounter order until the run
// is finalized. It never deduplicates.
type Accumulator struct {
	mu    sync.Mutex
	items []Declaration
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends d
func (a *Accumulator) Add(d Declaration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = append(a.items, d)
}

// Len returns the number of held declarations
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.items)
}

// DrainAll returns all declarations in encounter order and clears the accumulator
func (a *Accumulator) DrainAll() []Declaration {
	a.mu.Lock()
	defer a.mu.Unlock()

	items := a.items
	a.items = nil
	return items
}
