package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.World // Objects in the scene
	Background     integrator.Background
	SamplingConfig SamplingConfig
	CameraConfig   renderer.CameraConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// newScene fills in the image size from the camera and the default background
func newScene(name string, cameraConfig renderer.CameraConfig, samplesPerPixel, maxDepth int) *Scene {
	return &Scene{
		Name:       name,
		World:      geometry.NewWorld(),
		Background: integrator.DefaultBackground(),
		SamplingConfig: SamplingConfig{
			Width:           cameraConfig.Width,
			Height:          cameraConfig.Height(),
			SamplesPerPixel: samplesPerPixel,
			MaxDepth:        maxDepth,
		},
		CameraConfig: cameraConfig,
	}
}

// Overrides replaces scene settings; zero fields keep the scene's values
type Overrides struct {
	Width           int
	SamplesPerPixel int
	MaxDepth        int
}

// ApplyOverrides updates the sampling and camera configuration. Changing the width keeps the
// camera's aspect ratio.
func (s *Scene) ApplyOverrides(o Overrides) {
	if o.Width > 0 {
		s.CameraConfig.Width = o.Width
		s.SamplingConfig.Width = o.Width
		s.SamplingConfig.Height = max(s.CameraConfig.Height(), 1)
	}
	if o.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = o.SamplesPerPixel
	}
	if o.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = o.MaxDepth
	}
}

// NewCamera builds the scene's camera
func (s *Scene) NewCamera() *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig)
}

// NewIntegrator builds a path tracer using the scene's background
func (s *Scene) NewIntegrator() *integrator.PathTracingIntegrator {
	return integrator.NewPathTracingIntegrator(s.Background)
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
