package renderer

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Width         int       // Image width in pixels
	Aperture      float64   // Lens diameter; 0 is a pinhole camera
	FocusDistance float64   // Distance to the focus plane; 0 focuses on LookAt
}

// DefaultCameraConfig returns the camera used when a scene does not specify one
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
		Width:       400,
	}
}

// Height returns the image height implied by Width and AspectRatio
func (c CameraConfig) Height() int {
	return int(float64(c.Width) / c.AspectRatio)
}

// Validate reports every setting that would leave the camera without a usable view basis
func (c CameraConfig) Validate() error {
	var err error
	if !(c.VFov > 0 && c.VFov < 180) {
		err = multierr.Append(err, fmt.Errorf("vfov must be in (0, 180), got %g", c.VFov))
	}
	if !(c.AspectRatio > 0) {
		err = multierr.Append(err, fmt.Errorf("aspect ratio must be positive, got %g", c.AspectRatio))
	}
	if !(c.Aperture >= 0) {
		err = multierr.Append(err, fmt.Errorf("aperture must not be negative, got %g", c.Aperture))
	}
	if !(c.FocusDistance >= 0) {
		err = multierr.Append(err, fmt.Errorf("focus distance must not be negative, got %g", c.FocusDistance))
	}

	view := c.Center.Subtract(c.LookAt)
	if !(view.LengthSquared() > 0) {
		err = multierr.Append(err, errors.New("center and look_at must be different points"))
	} else if cross := c.Up.Cross(view); !(cross.LengthSquared() > 1e-12*c.Up.LengthSquared()*view.LengthSquared()) {
		err = multierr.Append(err, errors.New("up must not be zero or parallel to the view direction"))
	}
	return err
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Center != (core.Vec3{}) {
		result.Center = override.Center
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Camera generates rays for rendering
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Orthonormal basis
	lensRadius      float64
}

// NewCamera creates a look-at camera with an optional thin lens
func NewCamera(config CameraConfig) *Camera {
	theta := config.VFov * math.Pi / 180.0
	viewportHeight := 2.0 * math.Tan(theta/2.0)
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	horizontal := u.Multiply(viewportWidth * focusDistance)
	vertical := v.Multiply(viewportHeight * focusDistance)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		config:          config,
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2.0,
	}
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// GetCameraForward returns the unit viewing direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1 and t grows upward.
// A pinhole camera draws nothing from the sampler.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		origin = origin.Add(c.u.Multiply(rd.X)).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}
