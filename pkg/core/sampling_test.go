package core

import (
	"math"
	"testing"
)

func TestRandomUnitVector_UnitLength(t *testing.T) {
	sampler := NewSeededSampler(42)

	var mean Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		v := RandomUnitVector(sampler)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit vector, got length %f", v.Length())
		}
		mean = mean.Add(v)
	}

	// A uniform distribution on the sphere averages to the origin
	mean = mean.Multiply(1.0 / n)
	if mean.Length() > 0.03 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestRandomUnitVector_CoversBothHemispheres(t *testing.T) {
	sampler := NewSeededSampler(7)
	up, down := 0, 0
	for i := 0; i < 1000; i++ {
		if RandomUnitVector(sampler).Y > 0 {
			up++
		} else {
			down++
		}
	}
	if up < 400 || down < 400 {
		t.Errorf("Expected roughly even split, got up=%d down=%d", up, down)
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	sampler := NewSeededSampler(1)
	for i := 0; i < 1000; i++ {
		p := RandomInUnitDisk(sampler)
		if p.Z != 0 {
			t.Fatalf("Expected point in z=0 plane, got %v", p)
		}
		if p.LengthSquared() >= 1 {
			t.Fatalf("Expected point inside unit disk, got %v", p)
		}
	}
}

func TestRandomRange(t *testing.T) {
	sampler := NewSeededSampler(3)
	for i := 0; i < 1000; i++ {
		v := RandomRange(sampler, 0.5, 1.0)
		if v < 0.5 || v >= 1.0 {
			t.Fatalf("Value %f outside [0.5, 1.0)", v)
		}
	}
}

func TestSeededSamplerIsDeterministic(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)
	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed diverged")
		}
	}
}
