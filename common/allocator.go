package common

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAllocationFailed is returned when an Allocator refuses a reservation.
var ErrAllocationFailed = errors.New("allocation failed")

// Allocator accounts for the memory owned by engine objects (shader data, uniforms).
// Objects reserve their size when created and return it when released, which lets a host
// cap the memory used by per-instance shader state and observe allocation failures.
type Allocator interface {
	// Alloc reserves size bytes on behalf of label.
	//
	// Parameters:
	//   - label: a debug label describing the owner of the reservation
	//   - size: the number of bytes to reserve
	//
	// Returns:
	//   - error: an error wrapping ErrAllocationFailed if the reservation cannot be made
	Alloc(label string, size uint64) error

	// Free returns a previous reservation.
	//
	// Parameters:
	//   - label: the debug label used for the reservation
	//   - size: the number of bytes to return
	Free(label string, size uint64)

	// InUse reports the number of bytes currently reserved.
	//
	// Returns:
	//   - uint64: the reserved byte count
	InUse() uint64
}

// allocator is the implementation of the Allocator interface.
// A zero capacity means unbounded.
type allocator struct {
	mu       sync.Mutex
	capacity uint64
	inUse    uint64
}

var _ Allocator = &allocator{}

// NewHeapAllocator creates an unbounded Allocator that only tracks usage.
//
// Returns:
//   - Allocator: the allocator
func NewHeapAllocator() Allocator {
	return &allocator{}
}

// NewBudgetAllocator creates an Allocator that fails once capacity bytes are reserved.
//
// Parameters:
//   - capacity: the maximum number of bytes that may be reserved at once, must be > 0
//
// Returns:
//   - Allocator: the allocator
func NewBudgetAllocator(capacity uint64) Allocator {
	if capacity == 0 {
		panic("common: NewBudgetAllocator requires a non-zero capacity")
	}
	return &allocator{capacity: capacity}
}

func (a *allocator) Alloc(label string, size uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.capacity > 0 && a.inUse+size > a.capacity {
		return fmt.Errorf("%s: %d bytes requested, %d of %d in use: %w", label, size, a.inUse, a.capacity, ErrAllocationFailed)
	}
	a.inUse += size
	return nil
}

func (a *allocator) Free(label string, size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if size > a.inUse {
		panic(fmt.Sprintf("common: %s freed %d bytes but only %d are in use", label, size, a.inUse))
	}
	a.inUse -= size
}

func (a *allocator) InUse() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}
