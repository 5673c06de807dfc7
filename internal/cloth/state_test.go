package cloth

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewParticleState_Layout(t *testing.T) {
	s := NewParticleState(3, 4, mgl64.Vec3{1, 2, 3}, 0.5)

	pos, vel, acc := s.At(2, 3)
	want := mgl64.Vec3{1 + 1.5, 2 - 1.0, 3}
	if !pos.ApproxEqual(want) {
		t.Errorf("position (2,3) = %v, want %v", pos, want)
	}
	if vel != (mgl64.Vec3{}) || acc != (mgl64.Vec3{}) {
		t.Error("initial velocity and acceleration must be zero")
	}
}

func TestParticleState_ApplyRejectsShape(t *testing.T) {
	s := NewParticleState(3, 3, mgl64.Vec3{}, 1)
	before := s.Positions()

	err := s.Apply(make([]mgl64.Vec3, 9), make([]mgl64.Vec3, 8), make([]mgl64.Vec3, 9))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	after := s.Positions()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("a rejected Apply must not modify the state")
		}
	}
}

func TestParticleState_SnapshotsAreCopies(t *testing.T) {
	s := NewParticleState(3, 3, mgl64.Vec3{}, 1)
	snap := s.Positions()
	snap[0] = mgl64.Vec3{99, 99, 99}

	if p, _, _ := s.At(0, 0); p == snap[0] {
		t.Error("mutating a snapshot changed the state")
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	s := NewParticleState(3, 3, mgl64.Vec3{0.5, 0, 0}, 1)
	vel := make([]mgl64.Vec3, 9)
	vel[4] = mgl64.Vec3{1, 2, 3}
	if err := s.Apply(s.Positions(), vel, make([]mgl64.Vec3, 9)); err != nil {
		t.Fatal(err)
	}

	x := s.Flatten()
	if len(x) != 54 {
		t.Fatalf("flattened length = %d, want 54", len(x))
	}
	pos, v := make([]mgl64.Vec3, 9), make([]mgl64.Vec3, 9)
	unflatten(x, pos, v)
	if v[4] != vel[4] {
		t.Errorf("velocity round trip = %v, want %v", v[4], vel[4])
	}
	if p, _, _ := s.At(2, 1); pos[7] != p {
		t.Errorf("position round trip = %v, want %v", pos[7], p)
	}
}
