package shader_data

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// ReleaseObserver is notified once a queued ShaderData has actually been released.
type ReleaseObserver interface {
	// DidReleaseShaderData is called after d.Release has run.
	DidReleaseShaderData(d ShaderData)
}

// ReleaseObserverFunc adapts a function to a ReleaseObserver.
type ReleaseObserverFunc func(d ShaderData)

func (f ReleaseObserverFunc) DidReleaseShaderData(d ShaderData) {
	f(d)
}

type pendingRelease struct {
	data     ShaderData
	observer ReleaseObserver
}

// releaseQueue is the implementation of the ReleaseQueue interface.
type releaseQueue struct {
	mu      *sync.Mutex
	pending []pendingRelease
}

// ReleaseQueue collects ShaderData whose owner went away during a frame. Data stays valid until
// the queue is flushed after the frame, since the renderer may still read it in flight.
type ReleaseQueue interface {
	// Enqueue schedules d for release. Normally called through ShaderData.QueueRelease.
	//
	// Parameters:
	//   - d: the data to release
	//   - observer: notified after the release, may be nil
	Enqueue(d ShaderData, observer ReleaseObserver)

	// Flush releases every queued ShaderData in enqueue order and notifies its observer.
	// Data queued by an observer during the flush waits for the next flush.
	//
	// Returns:
	//   - int: the number of released entries
	Flush() int

	// Cancel removes d from the queue without releasing it. Normally called through
	// ShaderData.CancelRelease.
	//
	// Parameters:
	//   - d: the data to keep
	//
	// Returns:
	//   - ReleaseObserver: the observer d was queued with
	//   - bool: true if d was queued
	Cancel(d ShaderData) (ReleaseObserver, bool)

	// Len returns the number of queued entries.
	Len() int
}

var _ ReleaseQueue = &releaseQueue{}

// NewReleaseQueue creates an empty ReleaseQueue.
func NewReleaseQueue() ReleaseQueue {
	return &releaseQueue{mu: &sync.Mutex{}}
}

func (q *releaseQueue) Enqueue(d ShaderData, observer ReleaseObserver) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, pendingRelease{data: d, observer: observer})
}

func (q *releaseQueue) Flush() int {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, p := range pending {
		p.data.Release()
		if p.observer != nil {
			p.observer.DidReleaseShaderData(p.data)
		}
	}
	if len(pending) > 0 {
		common.Logger().Debug("release queue flushed", "count", len(pending))
	}
	return len(pending)
}

func (q *releaseQueue) Cancel(d ShaderData) (ReleaseObserver, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.pending {
		if p.data == d {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return p.observer, true
		}
	}
	return nil, false
}

func (q *releaseQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
