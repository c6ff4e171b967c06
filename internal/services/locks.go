package services

import "sync"

// RFQLocker serializes bid acceptance, allocation and finalization per RFQ.
// Different RFQs proceed in parallel.
type RFQLocker struct {
	mu sync.Map
}

// NewRFQLocker creates a new RFQLocker.
func NewRFQLocker() *RFQLocker {
	return &RFQLocker{}
}

// Lock acquires the mutex for one RFQ and returns its unlock function.
func (l *RFQLocker) Lock(rfqId string) func() {
	v, _ := l.mu.LoadOrStore(rfqId, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
