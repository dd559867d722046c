package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Name accepted by New
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Type        string `json:"type"`               // "builtin" or "yaml"
	FilePath    string `json:"filePath,omitempty"` // Path to the scene file (yaml type only)
}

type builtin struct {
	info  SceneInfo
	build func(seed int64, overrides ...renderer.CameraConfig) *Scene
}

var builtins = []builtin{
	{
		info: SceneInfo{ID: "default", DisplayName: "Default Scene", Description: "Diffuse, hollow glass and metal spheres on a ground sphere", Type: "builtin"},
		build: func(_ int64, overrides ...renderer.CameraConfig) *Scene {
			return NewDefaultScene(overrides...)
		},
	},
	{
		info:  SceneInfo{ID: "random", DisplayName: "Random Spheres", Description: "Ground sphere, 22x22 grid of random small spheres and three large spheres", Type: "builtin"},
		build: NewRandomScene,
	},
	{
		info: SceneInfo{ID: "materials", DisplayName: "Material Showcase", Description: "One sphere per material with increasing metal fuzz", Type: "builtin"},
		build: func(_ int64, overrides ...renderer.CameraConfig) *Scene {
			return NewMaterialsScene(overrides...)
		},
	},
}

// IsSceneFile reports whether name refers to a YAML scene file rather than a built-in scene
func IsSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// New builds the named scene. Names ending in .yaml or .yml are loaded from disk; anything else must
// be a built-in scene. The seed only affects randomly generated scenes.
func New(name string, seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if IsSceneFile(name) {
		return NewYAMLScene(name, cameraOverrides...)
	}
	for _, b := range builtins {
		if b.info.ID == name {
			return b.build(seed, cameraOverrides...), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(List(), ", "))
}

// List returns the names of the built-in scenes
func List() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.info.ID)
	}
	return names
}

// ListYAMLScenes scans dir for scene files. A missing directory yields no scenes. Files that fail
// to load are skipped and logged at warn level; a nil logger discards the warnings.
func ListYAMLScenes(dir string, log *zap.Logger) ([]SceneInfo, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneFileInfo(filePath)
		if err != nil {
			log.Warn("skipping scene file", zap.String("path", filePath), zap.Error(err))
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneFileInfo reads the metadata of a scene file
func ParseSceneFileInfo(filePath string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	sf, err := loaders.LoadSceneFile(filePath)
	if err != nil {
		return SceneInfo{}, err
	}

	displayName := sf.Name
	if displayName == "" {
		displayName = base
	}

	return SceneInfo{
		ID:          filePath,
		DisplayName: displayName,
		Description: fmt.Sprintf("%d spheres", len(sf.Spheres)),
		Type:        "yaml",
		FilePath:    filePath,
	}, nil
}

// ListAllScenes returns the built-in scenes followed by the scene files found in dir
func ListAllScenes(dir string, log *zap.Logger) ([]SceneInfo, error) {
	all := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		all = append(all, b.info)
	}

	files, err := ListYAMLScenes(dir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to list scene files: %w", err)
	}
	return append(all, files...), nil
}
