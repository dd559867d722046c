package material

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// sequenceSampler replays fixed values so scattering can be tested deterministically.
// Values are consumed in order; Get2D consumes two. It wraps around when exhausted.
type sequenceSampler struct {
	values []float64
	next   int
}

func newSequenceSampler(values ...float64) *sequenceSampler {
	return &sequenceSampler{values: values}
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *sequenceSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

// unitVectorSample returns the Get2D pair that makes core.RandomUnitVector
// produce the direction straight along -Y, +Y, -Z or +Z.
func unitVectorSample(direction string) []float64 {
	switch direction {
	case "-Y":
		return []float64{0.5, 0.75}
	case "+Y":
		return []float64{0.5, 0.25}
	case "-Z":
		return []float64{1.0, 0}
	default: // "+Z"
		return []float64{0, 0}
	}
}
