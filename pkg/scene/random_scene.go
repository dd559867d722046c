package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Random scene layout
const (
	randomGridHalf     = 11  // Small spheres on a (2*half) x (2*half) grid
	randomSmallRadius  = 0.2 // Radius of the grid spheres
	randomGroundRadius = 1000.0
)

// NewRandomScene creates the classic cover scene: a huge ground sphere, a 22x22 grid of small
// spheres with random materials and three large feature spheres. The same seed always produces the
// same scene.
func NewRandomScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := renderer.CameraConfig{
		Center:      core.NewVec3(13, 2, 3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       1200,
		AspectRatio: 16.0 / 9.0,
		VFov:        20.0,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := newScene("random", cameraConfig, 500, 50)
	sampler := core.NewSeededSampler(seed)

	groundMaterial := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -randomGroundRadius, 0), randomGroundRadius, groundMaterial))

	for z := -randomGridHalf; z < randomGridHalf; z++ {
		for x := -randomGridHalf; x < randomGridHalf; x++ {
			center := core.NewVec3(float64(x)+sampler.Get1D(), randomSmallRadius, float64(z)+sampler.Get1D())
			s.World.Add(geometry.NewSphere(center, randomSmallRadius, material.RandomMaterial(sampler)))
		}
	}

	s.World.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(material.Glass)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	return s
}
