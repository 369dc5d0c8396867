package event

import "testing"

type pingEvent struct{ n int }
type pongEvent struct{ n int }

func TestEventsCrossOneTickBoundary(t *testing.T) {
	b := NewBus()

	var got []int
	Subscribe(b, func(ev pingEvent) { got = append(got, ev.n) })

	Emit(b, pingEvent{n: 1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered in the emitting tick: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("after swap got = %v, want [1]", got)
	}

	// A second swap must not replay the event.
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event replayed: %v", got)
	}
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := NewBus()

	var order []string
	Subscribe(b, func(pingEvent) { order = append(order, "first") })
	Subscribe(b, func(pingEvent) { order = append(order, "second") })

	Emit(b, pingEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

func TestTypedRouting(t *testing.T) {
	b := NewBus()

	var pings, pongs int
	Subscribe(b, func(pingEvent) { pings++ })
	Subscribe(b, func(pongEvent) { pongs++ })

	Emit(b, pingEvent{})
	Emit(b, pingEvent{})
	Emit(b, pongEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	if pings != 2 || pongs != 1 {
		t.Fatalf("pings = %d pongs = %d, want 2 and 1", pings, pongs)
	}
}

func TestEmitDuringDispatchWaitsATick(t *testing.T) {
	b := NewBus()

	var pongs int
	Subscribe(b, func(pingEvent) { Emit(b, pongEvent{}) })
	Subscribe(b, func(pongEvent) { pongs++ })

	Emit(b, pingEvent{})
	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 0 {
		t.Fatal("chained event delivered in the same tick")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 1 {
		t.Fatalf("pongs = %d, want 1 after the next swap", pongs)
	}
}
