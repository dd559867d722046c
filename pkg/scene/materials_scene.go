package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewMaterialsScene lines up one sphere of each material, with metals of increasing fuzz and a
// pair of glass spheres sharing one material behind them
func NewMaterialsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(0, 1.5, 5),
		LookAt:        core.NewVec3(0, 0.5, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         600,
		AspectRatio:   2.0,
		VFov:          35.0,
		Aperture:      0.05,
		FocusDistance: 0.0,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := newScene("materials", cameraConfig, 200, 50)

	ground := material.NewLambertian(core.NewVec3(0.45, 0.45, 0.45))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground))

	front := []material.Material{
		material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2)),
		material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0),
		material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.3),
		material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 1.0),
		material.NewDielectric(material.Glass),
	}
	for i, m := range front {
		x := float64(i-len(front)/2) * 1.1
		s.World.Add(geometry.NewSphere(core.NewVec3(x, 0.5, 0), 0.5, m))
	}

	glass := material.NewDielectric(material.Glass)
	s.World.Add(
		geometry.NewSphere(core.NewVec3(-0.6, 0.4, -1.5), 0.4, glass),
		geometry.NewSphere(core.NewVec3(0.6, 0.4, -1.5), 0.4, glass),
		geometry.NewSphere(core.NewVec3(0.6, 0.4, -1.5), -0.35, glass),
	)

	return s
}
