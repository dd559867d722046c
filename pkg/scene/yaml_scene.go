package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Sampling values used when a scene file leaves them out
const (
	defaultFileSamples  = 100
	defaultFileMaxDepth = 50
)

// NewYAMLScene loads a scene description file
func NewYAMLScene(path string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	sf, err := loaders.LoadSceneFile(path)
	if err != nil {
		return nil, err
	}
	if sf.Name == "" {
		sf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return FromSceneFile(sf, cameraOverrides...)
}

// FromSceneFile builds a scene from a parsed description. Spheres naming the same material share a
// single material instance.
func FromSceneFile(sf *loaders.SceneFile, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	cameraConfig := sf.Camera.Apply(renderer.DefaultCameraConfig())
	if sf.Sampling.Width != 0 {
		cameraConfig.Width = sf.Sampling.Width
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samples := sf.Sampling.SamplesPerPixel
	if samples == 0 {
		samples = defaultFileSamples
	}
	maxDepth := sf.Sampling.MaxDepth
	if maxDepth == 0 {
		maxDepth = defaultFileMaxDepth
	}

	s := newScene(sf.Name, cameraConfig, samples, maxDepth)
	if sf.Background != nil {
		s.Background = integrator.Background{
			Top:    vec(sf.Background.Top),
			Bottom: vec(sf.Background.Bottom),
		}
	}

	materials := make(map[string]material.Material, len(sf.Materials))
	for name, spec := range sf.Materials {
		m, err := buildMaterial(spec)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	for i, spec := range sf.Spheres {
		m, ok := materials[spec.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q", i, spec.Material)
		}
		s.World.Add(geometry.NewSphere(vec(spec.Center), spec.Radius, m))
	}

	return s, nil
}

func buildMaterial(spec loaders.MaterialSpec) (material.Material, error) {
	switch spec.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(vec(spec.Albedo)), nil
	case loaders.MaterialMetal:
		return material.NewMetal(vec(spec.Albedo), spec.Fuzz), nil
	case loaders.MaterialDielectric:
		return material.NewDielectric(spec.IOR), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", spec.Type)
	}
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
