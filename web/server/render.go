package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Smallest image width accepted from clients
const minWidth = 16

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string `json:"scene"`       // Built-in scene name or scene file path
	Width       int    `json:"width"`       // Image width; height follows the scene's aspect ratio
	MaxSamples  int    `json:"maxSamples"`  // Maximum samples per pixel
	MaxPasses   int    `json:"maxPasses"`   // Maximum number of passes
	MaxDepth    int    `json:"maxDepth"`    // Maximum bounce depth
	Seed        int64  `json:"seed"`        // Base seed for tiles and random scenes
	TileUpdates bool   `json:"tileUpdates"` // Stream individual tiles as they finish
}

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent after every completed pass
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG of the whole image
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
	IsComplete     bool    `json:"isComplete"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Request   *RenderRequest
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender handles progressive rendering with real-time pass and tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, errStreamingUnsupported.Error(), http.StatusInternalServerError)
		return
	}

	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine; the handler waits for it so nothing is written after returning
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, flusher, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	// Render logs go to the server log and to the client console
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	renderLog := NewConsoleLogger(s.log, consoleChan).With(zap.String("renderID", renderID))

	pipeline, err := s.setupRenderingPipeline(r, renderLog)
	if err != nil {
		s.log.Warn("rejected render request", zap.Error(err), zap.String("query", r.URL.RawQuery))
		s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	startTime := time.Now()
	renderOptions := renderer.RenderOptions{TileUpdates: pipeline.Request.TileUpdates}
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderOptions)

	s.handleRenderingEvents(ctx, sseEventChan, consoleChan, passChan, tileChan, errChan, pipeline, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel is closed or the client disconnects
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sseEventChan <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			flusher.Flush()

		case <-ctx.Done():
			return
		}
	}
}

// sendEvent queues an event unless the client has gone away
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	}
}

// setupRenderingPipeline validates the request and creates the scene and raytracer
func (s *Server) setupRenderingPipeline(r *http.Request, log *zap.Logger) (*RenderingPipeline, error) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		return nil, err
	}

	sampling := sceneObj.SamplingConfig
	if sampling.Width*sampling.Height > 800*600 && req.MaxSamples > 100 {
		log.Warn("large image with high samples may render slowly",
			zap.Int("width", sampling.Width),
			zap.Int("height", sampling.Height),
			zap.Int("maxSamples", req.MaxSamples))
	}

	raytracer, err := renderer.NewProgressiveRaytracer(
		sceneObj.NewCamera(), sceneObj.World, sceneObj.NewIntegrator(),
		sampling.Width, sampling.Height, sampling.MaxDepth,
		s.progressiveConfig(req), log)
	if err != nil {
		return nil, err
	}

	return &RenderingPipeline{
		Request:   req,
		Scene:     sceneObj,
		Raytracer: raytracer,
	}, nil
}

// parseRenderRequest parses request parameters. Missing values fall back to the scene's own
// settings, capped at the server limits.
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, *scene.Scene, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Seed, err = parseInt64Param(query, "seed", s.render.Seed); err != nil {
		return nil, nil, err
	}

	sceneObj, err := s.createScene(req.Scene, req.Seed)
	if err != nil {
		return nil, nil, err
	}
	defaults := sceneObj.SamplingConfig

	defaultPasses := s.render.Passes
	if defaultPasses <= 0 {
		defaultPasses = renderer.DefaultProgressiveConfig().MaxPasses
	}

	if req.Width, err = parseIntParam(query, "width", min(defaults.Width, s.cfg.MaxWidth), minWidth, s.cfg.MaxWidth); err != nil {
		return nil, nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", min(defaults.SamplesPerPixel, s.cfg.MaxSamples), 1, s.cfg.MaxSamples); err != nil {
		return nil, nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", min(defaultPasses, s.cfg.MaxPasses), 1, s.cfg.MaxPasses); err != nil {
		return nil, nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", min(defaults.MaxDepth, s.cfg.MaxDepth), 1, s.cfg.MaxDepth); err != nil {
		return nil, nil, err
	}
	req.TileUpdates = query.Get("tileUpdates") == "true"

	sceneObj.ApplyOverrides(scene.Overrides{
		Width:           req.Width,
		SamplesPerPixel: req.MaxSamples,
		MaxDepth:        req.MaxDepth,
	})

	return req, sceneObj, nil
}

// handleRenderingEvents forwards passes, tiles and console messages until rendering ends
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	pipeline *RenderingPipeline, startTime time.Time) {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, pipeline, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case msg := <-consoleChan:
			s.handleConsoleMessage(ctx, sseEventChan, msg)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				s.flushConsole(ctx, sseEventChan, consoleChan)
				s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)})
				return
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}

	s.flushConsole(ctx, sseEventChan, consoleChan)
	s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "complete", Data: "Rendering completed"})
}

// flushConsole forwards console messages that are already queued
func (s *Server) flushConsole(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.handleConsoleMessage(ctx, sseEventChan, msg)
		default:
			return
		}
	}
}

func (s *Server) handleConsoleMessage(ctx context.Context, sseEventChan chan<- SSEEvent, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal console message", zap.Error(err))
		return
	}
	s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "console", Data: string(data)})
}

// handlePassComplete sends the pass statistics together with the full image
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult, pipeline *RenderingPipeline, startTime time.Time) {
	imageData, err := imageToBase64PNG(passResult.Image)
	if err != nil {
		s.log.Error("failed to encode pass image", zap.Int("pass", passResult.PassNumber), zap.Error(err))
		return
	}

	stats := passResult.Stats
	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    pipeline.Request.MaxPasses,
		ImageData:      imageData,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   stats.TotalSamples,
		AverageSamples: stats.AverageSamples,
		MaxSamples:     stats.MaxSamples,
		MinSamples:     stats.MinSamples,
		MaxSamplesUsed: stats.MaxSamplesUsed,
		PrimitiveCount: pipeline.Scene.GetPrimitiveCount(),
		IsComplete:     passResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.log.Error("failed to marshal pass update", zap.Error(err))
		return
	}
	s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "passComplete", Data: string(data)})
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		s.log.Error("failed to encode tile image",
			zap.Int("tileX", tileResult.TileX),
			zap.Int("tileY", tileResult.TileY),
			zap.Error(err))
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.log.Error("failed to marshal tile update", zap.Error(err))
		return
	}
	s.sendEvent(ctx, sseEventChan, SSEEvent{Type: "tile", Data: string(data)})
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := loaders.EncodeImage(&buf, img, ".png"); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
