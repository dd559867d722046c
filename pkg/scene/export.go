package scene

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// ToSceneFile describes the scene in the YAML scene file format so built-in and generated scenes
// can be saved and edited. Spheres sharing a material instance refer to one named material.
func (s *Scene) ToSceneFile() (*loaders.SceneFile, error) {
	cam := s.CameraConfig
	center, lookAt, up := array(cam.Center), array(cam.LookAt), array(cam.Up)

	sf := &loaders.SceneFile{
		Name: s.Name,
		Camera: loaders.CameraSpec{
			Center:        &center,
			LookAt:        &lookAt,
			Up:            &up,
			VFov:          cam.VFov,
			AspectRatio:   cam.AspectRatio,
			Aperture:      cam.Aperture,
			FocusDistance: cam.FocusDistance,
		},
		Sampling: loaders.SamplingSpec{
			Width:           s.SamplingConfig.Width,
			SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
			MaxDepth:        s.SamplingConfig.MaxDepth,
		},
		Materials: make(map[string]loaders.MaterialSpec),
	}

	if s.Background != integrator.DefaultBackground() {
		sf.Background = &loaders.BackgroundSpec{Top: array(s.Background.Top), Bottom: array(s.Background.Bottom)}
	}

	names := make(map[material.Material]string)
	for i, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("shape %d: %T cannot be written to a scene file", i, shape)
		}

		name, seen := names[sphere.Material]
		if !seen {
			spec, err := materialSpec(sphere.Material)
			if err != nil {
				return nil, fmt.Errorf("sphere %d: %w", i, err)
			}
			name = fmt.Sprintf("%s_%d", spec.Type, len(names)+1)
			names[sphere.Material] = name
			sf.Materials[name] = spec
		}

		sf.Spheres = append(sf.Spheres, loaders.SphereSpec{
			Center:   array(sphere.Center),
			Radius:   sphere.Radius,
			Material: name,
		})
	}

	return sf, nil
}

func materialSpec(m material.Material) (loaders.MaterialSpec, error) {
	switch m := m.(type) {
	case *material.Lambertian:
		return loaders.MaterialSpec{Type: loaders.MaterialLambertian, Albedo: array(m.Albedo)}, nil
	case *material.Metal:
		return loaders.MaterialSpec{Type: loaders.MaterialMetal, Albedo: array(m.Albedo), Fuzz: m.Fuzz}, nil
	case *material.Dielectric:
		return loaders.MaterialSpec{Type: loaders.MaterialDielectric, IOR: m.RefractiveIndex}, nil
	default:
		return loaders.MaterialSpec{}, fmt.Errorf("material %T cannot be written to a scene file", m)
	}
}

func array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
