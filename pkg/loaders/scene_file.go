package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// SceneFile is the YAML description of a sphere scene
type SceneFile struct {
	Name       string                  `yaml:"name"`
	Camera     CameraSpec              `yaml:"camera"`
	Sampling   SamplingSpec            `yaml:"sampling"`
	Background *BackgroundSpec         `yaml:"background,omitempty"`
	Materials  map[string]MaterialSpec `yaml:"materials"`
	Spheres    []SphereSpec            `yaml:"spheres"`
}

// CameraSpec describes the camera. Omitted vectors and zero scalars keep the renderer defaults;
// a vector given as [0, 0, 0] is the origin.
type CameraSpec struct {
	Center        *[3]float64 `yaml:"center,omitempty"`
	LookAt        *[3]float64 `yaml:"look_at,omitempty"`
	Up            *[3]float64 `yaml:"up,omitempty"`
	VFov          float64     `yaml:"vfov,omitempty"`
	AspectRatio   float64     `yaml:"aspect_ratio,omitempty"`
	Aperture      float64     `yaml:"aperture,omitempty"`
	FocusDistance float64     `yaml:"focus_distance,omitempty"`
}

// Apply overlays the camera settings given in the file onto base
func (c CameraSpec) Apply(base renderer.CameraConfig) renderer.CameraConfig {
	result := base
	if c.Center != nil {
		result.Center = vec3(*c.Center)
	}
	if c.LookAt != nil {
		result.LookAt = vec3(*c.LookAt)
	}
	if c.Up != nil {
		result.Up = vec3(*c.Up)
	}
	if c.VFov != 0 {
		result.VFov = c.VFov
	}
	if c.AspectRatio != 0 {
		result.AspectRatio = c.AspectRatio
	}
	if c.Aperture != 0 {
		result.Aperture = c.Aperture
	}
	if c.FocusDistance != 0 {
		result.FocusDistance = c.FocusDistance
	}
	return result
}

func vec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SamplingSpec holds image size and sampling settings
type SamplingSpec struct {
	Width           int `yaml:"width,omitempty"`
	SamplesPerPixel int `yaml:"samples_per_pixel,omitempty"`
	MaxDepth        int `yaml:"max_depth,omitempty"`
}

// BackgroundSpec overrides the sky gradient
type BackgroundSpec struct {
	Top    [3]float64 `yaml:"top"`
	Bottom [3]float64 `yaml:"bottom"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type   string     `yaml:"type"`
	Albedo [3]float64 `yaml:"albedo,omitempty"`
	Fuzz   float64    `yaml:"fuzz,omitempty"`
	IOR    float64    `yaml:"ior,omitempty"`
}

// SphereSpec places a sphere; Material names an entry of SceneFile.Materials
type SphereSpec struct {
	Center   [3]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	Material string     `yaml:"material"`
}

// LoadSceneFile reads and validates a YAML scene file
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	sf, err := ParseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	return sf, nil
}

// ParseSceneFile decodes and validates YAML scene data. Unknown keys are rejected.
func ParseSceneFile(data []byte) (*SceneFile, error) {
	var sf SceneFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Validate checks the camera, every material and every sphere and reports all problems together
func (sf *SceneFile) Validate() error {
	var err error

	for _, cameraErr := range multierr.Errors(sf.Camera.Apply(renderer.DefaultCameraConfig()).Validate()) {
		err = multierr.Append(err, fmt.Errorf("camera: %w", cameraErr))
	}

	for name, m := range sf.Materials {
		switch m.Type {
		case MaterialLambertian:
		case MaterialMetal:
			if !(m.Fuzz >= 0 && m.Fuzz <= 1) {
				err = multierr.Append(err, fmt.Errorf("material %q: metal fuzz must be in [0, 1], got %g", name, m.Fuzz))
			}
		case MaterialDielectric:
			if !(m.IOR > 0) {
				err = multierr.Append(err, fmt.Errorf("material %q: dielectric needs a positive ior, got %g", name, m.IOR))
			}
		default:
			err = multierr.Append(err, fmt.Errorf("material %q: unknown type %q", name, m.Type))
		}
	}

	if len(sf.Spheres) == 0 {
		err = multierr.Append(err, errors.New("scene has no spheres"))
	}
	for i, s := range sf.Spheres {
		if s.Radius == 0 || math.IsNaN(s.Radius) {
			err = multierr.Append(err, fmt.Errorf("sphere %d: radius must be non-zero", i))
		}
		if _, ok := sf.Materials[s.Material]; !ok {
			err = multierr.Append(err, fmt.Errorf("sphere %d: unknown material %q", i, s.Material))
		}
	}

	if sf.Sampling.Width < 0 || sf.Sampling.SamplesPerPixel < 0 || sf.Sampling.MaxDepth < 0 {
		err = multierr.Append(err, errors.New("sampling values must not be negative"))
	}

	return err
}

// SaveSceneFile writes sf as YAML, creating parent directories as needed
func SaveSceneFile(path string, sf *SceneFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(sf)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
