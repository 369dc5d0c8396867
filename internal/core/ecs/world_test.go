package ecs

import "testing"

type testPos struct{ X, Y float32 }
type testVel struct{ DX, DY float32 }
type testTag struct{ N int }

func newTestWorld() (*World, *PtrComponentStore[testPos], *PtrComponentStore[testVel]) {
	w := NewWorld()
	pos := NewPtrComponentStore[testPos]()
	vel := NewPtrComponentStore[testVel]()
	w.Registry().Register(pos)
	w.Registry().Register(vel)
	return w, pos, vel
}

func TestCreateAlive(t *testing.T) {
	w, _, _ := newTestWorld()
	id := w.CreateEntity()
	if !w.Alive(id) {
		t.Fatalf("freshly created entity should be alive")
	}
	if id.IsZero() && id.Index() != 0 {
		t.Fatalf("unexpected zero id for index %d", id.Index())
	}
}

func TestDestroyInvalidatesStaleID(t *testing.T) {
	w, pos, _ := newTestWorld()
	id := w.CreateEntity()
	pos.Set(id, &testPos{X: 1})

	w.MarkForDestruction(id)
	w.FlushDestroyQueue()

	if w.Alive(id) {
		t.Fatalf("destroyed entity still reported alive")
	}
	if _, ok := pos.Get(id); ok {
		t.Fatalf("destroyed entity still has position component")
	}

	// The index gets recycled with a new generation; the stale ID must not
	// alias the new entity.
	id2 := w.CreateEntity()
	if id2.Index() != id.Index() {
		t.Fatalf("expected index reuse, got %d and %d", id.Index(), id2.Index())
	}
	if id2.Generation() == id.Generation() {
		t.Fatalf("recycled index kept the same generation")
	}
	if w.Alive(id) {
		t.Fatalf("stale ID alive after index reuse")
	}
}

func TestDoubleDestroyIsNoOp(t *testing.T) {
	w, pos, _ := newTestWorld()
	id := w.CreateEntity()
	pos.Set(id, &testPos{})

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	w.FlushDestroyQueue()

	if w.Alive(id) {
		t.Fatalf("entity alive after double destroy")
	}

	// A third mark after the flush must also be harmless.
	w.MarkForDestruction(id)
	w.FlushDestroyQueue()

	fresh := w.CreateEntity()
	if !w.Alive(fresh) {
		t.Fatalf("pool corrupted by repeated destroys")
	}
}

func TestClearEmptiesWorld(t *testing.T) {
	w, pos, vel := newTestWorld()
	var ids []EntityID
	for i := 0; i < 5; i++ {
		id := w.CreateEntity()
		pos.Set(id, &testPos{X: float32(i)})
		vel.Set(id, &testVel{DX: 1})
		ids = append(ids, id)
	}
	w.MarkForDestruction(ids[0])

	w.Clear()

	if pos.Len() != 0 || vel.Len() != 0 {
		t.Fatalf("stores not empty after clear: pos=%d vel=%d", pos.Len(), vel.Len())
	}
	for _, id := range ids {
		if w.Alive(id) {
			t.Fatalf("entity %d alive after clear", id.Index())
		}
	}

	// World is reusable after a clear.
	id := w.CreateEntity()
	pos.Set(id, &testPos{X: 9})
	if !w.Alive(id) {
		t.Fatalf("entity created after clear is not alive")
	}
	if p, ok := pos.Get(id); !ok || p.X != 9 {
		t.Fatalf("component lost after clear+respawn")
	}
}

func TestEach2JoinsOnlyMatchingEntities(t *testing.T) {
	w, pos, vel := newTestWorld()

	both := w.CreateEntity()
	pos.Set(both, &testPos{X: 1})
	vel.Set(both, &testVel{DX: 2})

	posOnly := w.CreateEntity()
	pos.Set(posOnly, &testPos{X: 3})

	seen := 0
	Each2(pos, vel, func(id EntityID, p *testPos, v *testVel) {
		seen++
		if id != both {
			t.Fatalf("join visited entity without both components")
		}
		// Reading one component while mutating the other is part of the
		// store contract.
		p.X += v.DX
	})
	if seen != 1 {
		t.Fatalf("expected 1 joined entity, visited %d", seen)
	}
	if p, _ := pos.Get(both); p.X != 3 {
		t.Fatalf("mutation through join lost: got %v", p.X)
	}
}

func TestEach3JoinsAllThree(t *testing.T) {
	w, pos, vel := newTestWorld()
	tag := NewPtrComponentStore[testTag]()
	w.Registry().Register(tag)

	full := w.CreateEntity()
	pos.Set(full, &testPos{})
	vel.Set(full, &testVel{})
	tag.Set(full, &testTag{N: 7})

	partial := w.CreateEntity()
	pos.Set(partial, &testPos{})
	tag.Set(partial, &testTag{N: 8})

	var got []int
	Each3(pos, vel, tag, func(id EntityID, _ *testPos, _ *testVel, tg *testTag) {
		got = append(got, tg.N)
	})
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("Each3 visited wrong set: %v", got)
	}
}
