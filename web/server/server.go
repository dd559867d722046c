package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Server handles web requests for the path tracer
type Server struct {
	cfg       config.ServerConfig
	render    config.RenderConfig // Defaults for tile size, workers and seed
	scenesDir string
	log       *zap.Logger
}

// NewServer creates a new web server. Scene files are discovered in scenesDir.
func NewServer(cfg *config.Config, scenesDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:       cfg.Server,
		render:    cfg.Render,
		scenesDir: scenesDir,
		log:       log,
	}
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server and blocks until it fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("starting web server", zap.String("addr", "http://localhost"+addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the scene files on disk
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir, s.log)
	if err != nil {
		s.log.Error("failed to list scenes", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default sampling settings of a scene and the request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, s.render.Seed)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sampling := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           sampling.Width,
			"height":          sampling.Height,
			"samplesPerPixel": sampling.SamplesPerPixel,
			"maxDepth":        sampling.MaxDepth,
			"primitiveCount":  sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": minWidth, "max": s.cfg.MaxWidth},
			"maxSamples": map[string]int{"min": 1, "max": s.cfg.MaxSamples},
			"maxPasses":  map[string]int{"min": 1, "max": s.cfg.MaxPasses},
			"maxDepth":   map[string]int{"min": 1, "max": s.cfg.MaxDepth},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// createScene builds a built-in scene or a scene file. Scene files must live in the server's
// scenes directory.
func (s *Server) createScene(name string, seed int64) (*scene.Scene, error) {
	if scene.IsSceneFile(name) && !s.inScenesDir(name) {
		return nil, fmt.Errorf("unknown scene file %q", name)
	}
	return scene.New(name, seed)
}

// inScenesDir reports whether path names a file directly inside the scenes directory
func (s *Server) inScenesDir(path string) bool {
	dir, err := filepath.Abs(s.scenesDir)
	if err != nil {
		return false
	}
	file, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(file) == dir
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

// errStreamingUnsupported is reported when the response writer cannot flush
var errStreamingUnsupported = errors.New("streaming not supported")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// progressiveConfig builds the renderer settings for a validated request
func (s *Server) progressiveConfig(req *RenderRequest) renderer.ProgressiveConfig {
	tileSize := s.render.TileSize
	if tileSize <= 0 {
		tileSize = renderer.DefaultProgressiveConfig().TileSize
	}
	return renderer.ProgressiveConfig{
		TileSize:           tileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: req.MaxSamples,
		MaxPasses:          req.MaxPasses,
		NumWorkers:         s.render.Workers,
		Seed:               req.Seed,
	}
}
