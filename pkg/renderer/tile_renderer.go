package renderer

import (
	"image"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera        *Camera
	world         geometry.Shape
	integrator    integrator.Integrator
	width, height int
	maxDepth      int
}

// NewTileRenderer creates a tile renderer for a width x height image
func NewTileRenderer(camera *Camera, world geometry.Shape, integratorInst integrator.Integrator, width, height, maxDepth int) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		world:      world,
		integrator: integratorInst,
		width:      width,
		height:     height,
		maxDepth:   maxDepth,
	}
}

// RenderTileBounds brings every pixel within bounds up to targetSamples samples
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	stats := newRenderStats(bounds.Dx()*bounds.Dy(), targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			samplesUsed := tr.samplePixel(i, j, &pixelStats[j][i], sampler, targetSamples)
			stats.update(samplesUsed)
		}
	}

	stats.finalize()
	return stats
}

// samplePixel adds samples to ps until it holds targetSamples and returns how many were added
func (tr *TileRenderer) samplePixel(i, j int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	initialSampleCount := ps.SampleCount

	for ps.SampleCount < targetSamples {
		s, t := tr.jitter(i, j, sampler)
		ray := tr.camera.GetRay(s, t, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.world, tr.maxDepth, sampler))
	}

	return ps.SampleCount - initialSampleCount
}

// jitter maps pixel (i, j) plus a random offset to camera coordinates. Image row 0 is the top
// of the picture, so t is flipped.
func (tr *TileRenderer) jitter(i, j int, sampler core.Sampler) (float64, float64) {
	offset := sampler.Get2D()
	s := (float64(i) + offset.X) / float64(max(tr.width-1, 1))
	t := (float64(tr.height-1-j) + offset.Y) / float64(max(tr.height-1, 1))
	return s, t
}
