package renderer

import (
	"image/color"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ToRGBA converts a linear color to 8-bit RGBA using gamma 2 (square root), clamping each channel
// to [0, 0.999] before scaling by 256.
func ToRGBA(colorVec core.Vec3) color.RGBA {
	return color.RGBA{
		R: quantize(colorVec.X),
		G: quantize(colorVec.Y),
		B: quantize(colorVec.Z),
		A: 255,
	}
}

func quantize(c float64) uint8 {
	g := math.Sqrt(c)
	if math.IsNaN(g) || g < 0 {
		return 0
	}
	if g > 0.999 {
		g = 0.999
	}
	return uint8(256 * g)
}
