package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
)

func newEffect(t *testing.T, alloc common.Allocator, reg shader_resource.Registry, name string) effect.Effect {
	t.Helper()
	ref, err := reg.Register(shader_resource.NewShaderResource(name,
		shader_resource.WithVertexData(0, "amount", 1),
	))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	e, err := effect.NewEffect(alloc, ref)
	if err != nil {
		t.Fatalf("NewEffect: %v", err)
	}
	return e
}

func TestDefaults(t *testing.T) {
	obj := NewGameObject(WithID(7), WithPosition(1, 2, 3))
	if obj.ID() != 7 || !obj.Enabled() || obj.Ephemeral() {
		t.Fatal("unexpected defaults")
	}
	if obj.Fill() != common.Opaque || obj.Effect() != nil {
		t.Fatal("fill or effect not defaulted")
	}
	if x, y, z := obj.Position(); x != 1 || y != 2 || z != 3 {
		t.Fatalf("Position() = %v %v %v", x, y, z)
	}
}

func TestReplacingEffectQueuesRelease(t *testing.T) {
	alloc := common.NewHeapAllocator()
	reg := shader_resource.NewRegistry()
	queue := shader_data.NewReleaseQueue()
	first := newEffect(t, alloc, reg, "filter.a")
	second := newEffect(t, alloc, reg, "filter.b")
	obj := NewGameObject(WithEffect(first), WithReleaseQueue(queue))

	// a script still holds the old proxy mid frame
	p := first.Data().AttachProxy()
	obj.SetEffect(second)

	if obj.Effect() != second || obj.PendingReleases() != 1 {
		t.Fatalf("Effect() = %v, pending = %d", obj.Effect(), obj.PendingReleases())
	}
	if !p.SetVertexData(shader_data.Data0, 3) {
		t.Fatal("old proxy unusable before the frame ended")
	}

	queue.Flush()
	if obj.PendingReleases() != 0 || !first.Data().IsReleased() {
		t.Fatal("old data not released on flush")
	}
	if !p.IsDetached() {
		t.Fatal("old proxy still attached after release")
	}
	if second.Data().IsReleased() {
		t.Fatal("current effect data released")
	}
}

func TestReplacingEffectWithoutQueueReleasesImmediately(t *testing.T) {
	alloc := common.NewHeapAllocator()
	reg := shader_resource.NewRegistry()
	e := newEffect(t, alloc, reg, "filter.a")
	obj := NewGameObject(WithEffect(e))

	obj.Destroy()
	if obj.Effect() != nil || !e.Data().IsReleased() {
		t.Fatal("Destroy did not release the effect data")
	}
	if alloc.InUse() != 0 {
		t.Fatalf("InUse() = %d after Destroy", alloc.InUse())
	}
	obj.Destroy()
}

func TestSetSameEffectIsNoop(t *testing.T) {
	alloc := common.NewHeapAllocator()
	e := newEffect(t, alloc, shader_resource.NewRegistry(), "filter.a")
	obj := NewGameObject(WithEffect(e))
	obj.SetEffect(e)
	if e.Data().IsReleased() {
		t.Fatal("re-setting the same effect released its data")
	}
}

func TestSwitchingBackBeforeFlushKeepsData(t *testing.T) {
	alloc := common.NewHeapAllocator()
	reg := shader_resource.NewRegistry()
	queue := shader_data.NewReleaseQueue()
	first := newEffect(t, alloc, reg, "filter.a")
	second := newEffect(t, alloc, reg, "filter.b")
	obj := NewGameObject(WithEffect(first), WithReleaseQueue(queue))

	obj.SetEffect(second)
	obj.SetEffect(first)
	if obj.PendingReleases() != 1 || queue.Len() != 1 {
		t.Fatalf("pending = %d, queued = %d", obj.PendingReleases(), queue.Len())
	}
	if first.Data().IsQueued() || first.Data().Owner() != first {
		t.Fatal("reinstalled effect data still queued or unowned")
	}

	if n := queue.Flush(); n != 1 {
		t.Fatalf("Flush() = %d, want 1", n)
	}
	if first.Data().IsReleased() || !second.Data().IsReleased() {
		t.Fatal("flush released the wrong data")
	}
	if obj.PendingReleases() != 0 {
		t.Fatalf("pending = %d after flush", obj.PendingReleases())
	}
	first.Data().CopyVertexData()
}

func TestSettingReleasedEffectPanics(t *testing.T) {
	alloc := common.NewHeapAllocator()
	reg := shader_resource.NewRegistry()
	queue := shader_data.NewReleaseQueue()
	first := newEffect(t, alloc, reg, "filter.a")
	second := newEffect(t, alloc, reg, "filter.b")
	obj := NewGameObject(WithEffect(first), WithReleaseQueue(queue))
	obj.SetEffect(second)
	queue.Flush()

	defer func() {
		if recover() == nil {
			t.Fatal("SetEffect with released data did not panic")
		}
		if obj.Effect() != second {
			t.Fatal("effect changed by the rejected SetEffect")
		}
	}()
	obj.SetEffect(first)
}
