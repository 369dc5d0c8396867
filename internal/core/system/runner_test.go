package system

import (
	"testing"
	"time"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestTickRunsPhasesInOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	// Registered deliberately out of phase order.
	r.Register(&recordingSystem{name: "cleanup", phase: PhaseCleanup, log: &log})
	r.Register(&recordingSystem{name: "output", phase: PhaseOutput, log: &log})
	r.Register(&recordingSystem{name: "input", phase: PhaseInput, log: &log})
	r.Register(&recordingSystem{name: "update", phase: PhaseUpdate, log: &log})

	r.Tick(time.Millisecond)

	want := []string{"input", "update", "output", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}

func TestSamePhaseKeepsRegistrationOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "later", phase: PhaseCleanup, log: &log})
	r.Register(&recordingSystem{name: "dispatch", phase: PhaseInput, log: &log})
	r.Register(&recordingSystem{name: "drain", phase: PhaseInput, log: &log})

	r.Tick(time.Millisecond)

	if len(log) != 3 || log[0] != "dispatch" || log[1] != "drain" {
		t.Fatalf("ran %v, want dispatch before drain", log)
	}
}

func TestTickPhaseRunsOnlyThatPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "input", phase: PhaseInput, log: &log})
	r.Register(&recordingSystem{name: "teardown", phase: PhasePostUpdate, log: &log})
	r.Register(&recordingSystem{name: "persist", phase: PhasePersist, log: &log})

	r.TickPhase(PhasePostUpdate, time.Millisecond)

	if len(log) != 1 || log[0] != "teardown" {
		t.Fatalf("ran %v, want only teardown", log)
	}
}

func TestRegisterAfterTickResorts(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "output", phase: PhaseOutput, log: &log})
	r.Tick(time.Millisecond)

	r.Register(&recordingSystem{name: "input", phase: PhaseInput, log: &log})
	log = log[:0]
	r.Tick(time.Millisecond)

	if len(log) != 2 || log[0] != "input" || log[1] != "output" {
		t.Fatalf("ran %v, want [input output]", log)
	}
}
