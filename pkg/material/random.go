package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Glass is the refractive index used for randomly generated dielectrics
const Glass = 1.5

// RandomMaterial draws a material with the weights used by the random sphere field:
// 80% diffuse, 15% metal, 5% glass.
func RandomMaterial(sampler core.Sampler) Material {
	choose := sampler.Get1D()
	switch {
	case choose < 0.8:
		albedo := core.RandomColor(sampler, 0, 1).MultiplyVec(core.RandomColor(sampler, 0, 1))
		return NewLambertian(albedo)
	case choose < 0.95:
		albedo := core.RandomColor(sampler, 0.5, 1)
		fuzz := core.RandomRange(sampler, 0, 0.5)
		return NewMetal(albedo, fuzz)
	default:
		return NewDielectric(Glass)
	}
}
