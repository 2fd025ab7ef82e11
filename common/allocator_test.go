package common

import (
	"errors"
	"testing"
)

func TestHeapAllocatorTracksUsage(t *testing.T) {
	a := NewHeapAllocator()
	if err := a.Alloc("a", 64); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := a.Alloc("b", 16); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if got := a.InUse(); got != 80 {
		t.Fatalf("InUse() = %d, want 80", got)
	}
	a.Free("a", 64)
	if got := a.InUse(); got != 16 {
		t.Fatalf("InUse() = %d, want 16", got)
	}
}

func TestBudgetAllocatorFails(t *testing.T) {
	a := NewBudgetAllocator(100)
	if err := a.Alloc("first", 60); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	err := a.Alloc("second", 60)
	if !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}
	if got := a.InUse(); got != 60 {
		t.Fatalf("failed Alloc changed usage to %d", got)
	}
	a.Free("first", 60)
	if err := a.Alloc("second", 60); err != nil {
		t.Fatalf("Alloc after Free: %v", err)
	}
}

func TestAllocatorOverFreePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewHeapAllocator().Free("x", 1)
}
