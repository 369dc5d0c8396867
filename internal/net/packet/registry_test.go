package packet

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testRegistry() *Registry {
	return NewRegistry(zap.NewNop())
}

func TestDispatchRoutesEnvelope(t *testing.T) {
	reg := testRegistry()

	var gotSess any
	var gotData string
	reg.Register("ping", []SessionState{StateLobby}, func(sess any, data json.RawMessage) {
		gotSess = sess
		gotData = string(data)
	})

	sess := &struct{ id int }{id: 7}
	raw := []byte(`{"t":"ping","data":{"n":1}}`)
	if err := reg.Dispatch(sess, StateLobby, raw); err != nil {
		t.Fatalf("Dispatch error = %v, want nil", err)
	}
	if gotSess != sess {
		t.Fatal("handler did not receive the session")
	}
	if gotData != `{"n":1}` {
		t.Fatalf("handler data = %q, want raw payload", gotData)
	}
}

func TestDispatchEnforcesStateGate(t *testing.T) {
	reg := testRegistry()

	called := false
	reg.Register("queue_join", []SessionState{StateLobby}, func(any, json.RawMessage) {
		called = true
	})

	err := reg.Dispatch(nil, StateAuth, []byte(`{"t":"queue_join"}`))
	if err == nil {
		t.Fatal("Dispatch in wrong state = nil error, want state violation")
	}
	if called {
		t.Fatal("gated handler was still called")
	}
	if err := reg.Dispatch(nil, StateLobby, []byte(`{"t":"queue_join"}`)); err != nil {
		t.Fatalf("Dispatch in allowed state error = %v, want nil", err)
	}
	if !called {
		t.Fatal("handler not called in allowed state")
	}
}

func TestDispatchIgnoresUnknownType(t *testing.T) {
	reg := testRegistry()
	if err := reg.Dispatch(nil, StateLobby, []byte(`{"t":"nope"}`)); err != nil {
		t.Fatalf("unknown type error = %v, want nil", err)
	}
}

func TestDispatchRejectsMalformed(t *testing.T) {
	reg := testRegistry()
	if err := reg.Dispatch(nil, StateLobby, nil); err == nil {
		t.Fatal("empty message error = nil, want error")
	}
	if err := reg.Dispatch(nil, StateLobby, []byte(`{broken`)); err == nil {
		t.Fatal("malformed envelope error = nil, want error")
	}
}

func TestDispatchBinaryByMarker(t *testing.T) {
	reg := testRegistry()

	var got ControlFrame
	reg.RegisterBinary(MarkerInput, []SessionState{StateMatch}, func(_ any, r *Reader) {
		got = ReadControlFrame(r)
	})

	raw := EncodeControlFrame(ControlFrame{Up: true, Right: true})
	if err := reg.Dispatch(nil, StateMatch, raw); err != nil {
		t.Fatalf("binary dispatch error = %v, want nil", err)
	}
	want := ControlFrame{Up: true, Right: true}
	if got != want {
		t.Fatalf("decoded frame = %+v, want %+v", got, want)
	}

	if err := reg.Dispatch(nil, StateLobby, raw); err == nil {
		t.Fatal("binary frame outside match state = nil error, want error")
	}
	// An unregistered marker is dropped, not an error.
	if err := reg.Dispatch(nil, StateMatch, []byte{0x7F, 0x00}); err != nil {
		t.Fatalf("unknown marker error = %v, want nil", err)
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	reg := testRegistry()
	reg.Register("boom", []SessionState{StateLobby}, func(any, json.RawMessage) {
		panic("kaboom")
	})

	err := reg.Dispatch(nil, StateLobby, []byte(`{"t":"boom"}`))
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("panic dispatch error = %v, want wrapped panic", err)
	}
}

func TestControlFrameRoundTrip(t *testing.T) {
	in := ControlFrame{Down: true, Left: true}
	raw := EncodeControlFrame(in)
	if raw[0] != MarkerInput {
		t.Fatalf("marker = 0x%02X, want 0x%02X", raw[0], MarkerInput)
	}
	out := ReadControlFrame(NewReader(raw))
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}

	// A frame cut off after the marker reads as all-released.
	short := ReadControlFrame(NewReader([]byte{MarkerInput}))
	if short != (ControlFrame{}) {
		t.Fatalf("short frame = %+v, want zero", short)
	}
}

func TestReaderShortReads(t *testing.T) {
	w := NewWriterWithMarker(0x05)
	w.WriteH(512)
	w.WriteD(-9)
	w.WriteF(1.5)

	r := NewReader(w.Bytes())
	if r.Marker() != 0x05 {
		t.Fatalf("Marker = 0x%02X, want 0x05", r.Marker())
	}
	if v := r.ReadH(); v != 512 {
		t.Fatalf("ReadH = %d, want 512", v)
	}
	if v := r.ReadD(); v != -9 {
		t.Fatalf("ReadD = %d, want -9", v)
	}
	if v := r.ReadF(); v != 1.5 {
		t.Fatalf("ReadF = %v, want 1.5", v)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
	// Reads past the end return zero values instead of panicking.
	if v := r.ReadD(); v != 0 {
		t.Fatalf("ReadD past end = %d, want 0", v)
	}
}
