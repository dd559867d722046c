package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

func spheres(t *testing.T, s *Scene) []*geometry.Sphere {
	t.Helper()
	var result []*geometry.Sphere
	for _, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			t.Fatalf("unexpected shape %T", shape)
		}
		result = append(result, sphere)
	}
	return result
}

func TestDefaultScene(t *testing.T) {
	s := NewDefaultScene()

	if s.Name != "default" {
		t.Errorf("Expected name default, got %s", s.Name)
	}
	if s.GetPrimitiveCount() != 5 {
		t.Errorf("Expected 5 spheres, got %d", s.GetPrimitiveCount())
	}
	if s.SamplingConfig.Width != 400 || s.SamplingConfig.Height != 225 {
		t.Errorf("Unexpected image size %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.Background != integrator.DefaultBackground() {
		t.Errorf("Expected default background, got %v", s.Background)
	}

	// The hollow glass pair shares one material and the inner radius is negative
	sp := spheres(t, s)
	if sp[2].Material != sp[3].Material {
		t.Error("Hollow glass spheres should share one material")
	}
	if sp[3].Radius >= 0 {
		t.Errorf("Inner glass sphere should have a negative radius, got %f", sp[3].Radius)
	}
}

func TestRandomSceneLayout(t *testing.T) {
	s := NewRandomScene(1)
	sp := spheres(t, s)

	// Ground + 22*22 grid + 3 feature spheres
	if len(sp) != 1+22*22+3 {
		t.Fatalf("Expected %d spheres, got %d", 1+22*22+3, len(sp))
	}

	ground := sp[0]
	if ground.Radius != 1000 || ground.Center != core.NewVec3(0, -1000, 0) {
		t.Errorf("Unexpected ground sphere %+v", ground)
	}

	counts := map[string]int{}
	for i, sphere := range sp[1 : 1+22*22] {
		x, z := i%22-11, i/22-11
		if sphere.Radius != 0.2 || sphere.Center.Y != 0.2 {
			t.Fatalf("Grid sphere %d has unexpected radius/height %+v", i, sphere)
		}
		if sphere.Center.X < float64(x) || sphere.Center.X >= float64(x+1) ||
			sphere.Center.Z < float64(z) || sphere.Center.Z >= float64(z+1) {
			t.Fatalf("Grid sphere %d at %v outside cell (%d,%d)", i, sphere.Center, x, z)
		}
		switch m := sphere.Material.(type) {
		case *material.Lambertian:
			counts["lambertian"]++
		case *material.Metal:
			counts["metal"]++
			if m.Fuzz < 0 || m.Fuzz >= 0.5 {
				t.Errorf("Metal fuzz %f outside [0, 0.5)", m.Fuzz)
			}
		case *material.Dielectric:
			counts["dielectric"]++
		default:
			t.Fatalf("Unexpected material %T", m)
		}
	}

	// 484 draws: roughly 80% / 15% / 5%
	if counts["lambertian"] < 330 || counts["metal"] < 40 || counts["dielectric"] < 5 {
		t.Errorf("Material mix looks wrong: %v", counts)
	}

	big := sp[len(sp)-3:]
	if _, ok := big[0].Material.(*material.Dielectric); !ok || big[0].Center != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected glass sphere at (0,1,0), got %+v", big[0])
	}
	if m, ok := big[1].Material.(*material.Lambertian); !ok || m.Albedo != core.NewVec3(0.4, 0.2, 0.1) {
		t.Errorf("Expected brown diffuse sphere, got %+v", big[1])
	}
	if m, ok := big[2].Material.(*material.Metal); !ok || m.Fuzz != 0 || m.Albedo != core.NewVec3(0.7, 0.6, 0.5) {
		t.Errorf("Expected polished metal sphere, got %+v", big[2])
	}

	if s.CameraConfig.Center != core.NewVec3(13, 2, 3) || s.CameraConfig.VFov != 20 {
		t.Errorf("Unexpected camera %+v", s.CameraConfig)
	}
	if s.SamplingConfig.Width != 1200 || s.SamplingConfig.Height != 675 || s.SamplingConfig.SamplesPerPixel != 500 {
		t.Errorf("Unexpected sampling %+v", s.SamplingConfig)
	}
}

func TestRandomSceneDeterministic(t *testing.T) {
	a := spheres(t, NewRandomScene(5))
	b := spheres(t, NewRandomScene(5))
	c := spheres(t, NewRandomScene(6))

	sameAsC := true
	for i := range a {
		if a[i].Center != b[i].Center {
			t.Fatalf("Sphere %d differs for the same seed", i)
		}
		if a[i].Center != c[i].Center {
			sameAsC = false
		}
	}
	if sameAsC {
		t.Error("Different seeds should produce different scenes")
	}
}

func TestMaterialsScene(t *testing.T) {
	s := NewMaterialsScene()
	sp := spheres(t, s)
	if len(sp) != 9 {
		t.Fatalf("Expected 9 spheres, got %d", len(sp))
	}
	if sp[6].Material != sp[7].Material || sp[7].Material != sp[8].Material {
		t.Error("Back glass spheres should share a material")
	}
	if s.CameraConfig.Aperture == 0 {
		t.Error("Material showcase uses a thin lens")
	}
}

func TestCameraOverrides(t *testing.T) {
	s := NewDefaultScene(renderer.CameraConfig{Width: 800, VFov: 60})
	if s.CameraConfig.Width != 800 || s.CameraConfig.VFov != 60 {
		t.Errorf("Overrides not applied: %+v", s.CameraConfig)
	}
	if s.SamplingConfig.Width != 800 || s.SamplingConfig.Height != 450 {
		t.Errorf("Image size should follow the camera: %+v", s.SamplingConfig)
	}
	if s.CameraConfig.Center != core.NewVec3(-2, 2, 1) {
		t.Error("Unset override fields should keep scene values")
	}
}

func TestApplyOverrides(t *testing.T) {
	s := NewRandomScene(1)
	s.ApplyOverrides(Overrides{Width: 320, SamplesPerPixel: 8})

	if s.SamplingConfig.Width != 320 || s.SamplingConfig.Height != 180 || s.CameraConfig.Width != 320 {
		t.Errorf("Width override not applied: %+v", s.SamplingConfig)
	}
	if s.SamplingConfig.SamplesPerPixel != 8 {
		t.Errorf("Expected 8 samples, got %d", s.SamplingConfig.SamplesPerPixel)
	}
	if s.SamplingConfig.MaxDepth != 50 {
		t.Errorf("Zero depth override should keep 50, got %d", s.SamplingConfig.MaxDepth)
	}
}

func TestNewResolvesNames(t *testing.T) {
	for _, name := range List() {
		s, err := New(name, 1)
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
			continue
		}
		if s.Name != name {
			t.Errorf("New(%q) built scene %q", name, s.Name)
		}
		if s.World.Len() == 0 {
			t.Errorf("Scene %q is empty", name)
		}
	}

	if _, err := New("cornell-box", 1); err == nil || !strings.Contains(err.Error(), "available") {
		t.Errorf("Expected unknown scene error listing names, got %v", err)
	}
}

const yamlScene = `
camera:
  center: [0, 0, 2]
  vfov: 60
  aspect_ratio: 2
sampling:
  width: 100
  samples_per_pixel: 4
background:
  top: [0, 0, 1]
  bottom: [1, 0, 0]
materials:
  glass: {type: dielectric, ior: 1.5}
  red: {type: lambertian, albedo: [0.9, 0.1, 0.1]}
  steel: {type: metal, albedo: [0.6, 0.6, 0.6], fuzz: 0.3}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: glass}
  - {center: [0, 0, -1], radius: -0.4, material: glass}
  - {center: [1, 0, -1], radius: 0.5, material: red}
  - {center: [-1, 0, -1], radius: 0.5, material: steel}
`

func writeScene(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLScene(t *testing.T) {
	path := writeScene(t, "glassy.yaml", yamlScene)

	s, err := New(path, 0)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", path, err)
	}

	if s.Name != "glassy" {
		t.Errorf("Expected name from file name, got %q", s.Name)
	}
	if s.CameraConfig.Center != core.NewVec3(0, 0, 2) || s.CameraConfig.VFov != 60 {
		t.Errorf("Camera not loaded: %+v", s.CameraConfig)
	}
	// Missing camera fields fall back to the renderer defaults
	if s.CameraConfig.LookAt != core.NewVec3(0, 0, -1) || s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Camera defaults lost: %+v", s.CameraConfig)
	}
	if s.SamplingConfig != (SamplingConfig{Width: 100, Height: 50, SamplesPerPixel: 4, MaxDepth: 50}) {
		t.Errorf("Unexpected sampling %+v", s.SamplingConfig)
	}
	if s.Background.Top != core.NewVec3(0, 0, 1) || s.Background.Bottom != core.NewVec3(1, 0, 0) {
		t.Errorf("Background not loaded: %+v", s.Background)
	}

	sp := spheres(t, s)
	if len(sp) != 4 {
		t.Fatalf("Expected 4 spheres, got %d", len(sp))
	}
	if sp[0].Material != sp[1].Material {
		t.Error("Spheres naming the same material should share it")
	}
	if m, ok := sp[3].Material.(*material.Metal); !ok || m.Fuzz != 0.3 {
		t.Errorf("Expected metal with fuzz 0.3, got %+v", sp[3].Material)
	}
}

func TestYAMLSceneCameraAtOrigin(t *testing.T) {
	path := writeScene(t, "cover.yaml", `
camera:
  center: [13, 2, 3]
  look_at: [0, 0, 0]
  vfov: 20
materials:
  m: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
spheres:
  - {center: [0, 1, 0], radius: 1, material: m}
`)

	s, err := New(path, 0)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", path, err)
	}
	if s.CameraConfig.LookAt != core.NewVec3(0, 0, 0) {
		t.Fatalf("Expected look_at at the origin, got %v", s.CameraConfig.LookAt)
	}

	expected := core.NewVec3(-13, -2, -3).Normalize()
	forward := s.NewCamera().GetCameraForward()
	if forward.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected forward %v, got %v", expected, forward)
	}
}

func TestYAMLSceneOriginCenter(t *testing.T) {
	path := writeScene(t, "origin.yaml", `
camera:
  center: [0, 0, 0]
  look_at: [0, 0, 5]
  up: [0, 1, 0]
materials:
  m: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
spheres:
  - {center: [0, 0, 5], radius: 1, material: m}
`)

	s, err := New(path, 0)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", path, err)
	}
	if s.CameraConfig.Center != core.NewVec3(0, 0, 0) || s.CameraConfig.LookAt != core.NewVec3(0, 0, 5) {
		t.Errorf("Unexpected camera %+v", s.CameraConfig)
	}
	if forward := s.NewCamera().GetCameraForward(); forward.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-12 {
		t.Errorf("Expected forward +Z, got %v", forward)
	}
}

func TestYAMLSceneRejectsDegenerateCamera(t *testing.T) {
	path := writeScene(t, "stuck.yaml", `
camera:
  center: [0, 0, -1]
  look_at: [0, 0, -1]
materials:
  m: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
spheres:
  - {center: [0, 0, -3], radius: 1, material: m}
`)
	if _, err := New(path, 0); err == nil || !strings.Contains(err.Error(), "camera") {
		t.Errorf("Expected camera error, got %v", err)
	}
}

func TestYAMLSceneErrors(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yml"), 0); err == nil {
		t.Error("Expected error for missing scene file")
	}

	bad := writeScene(t, "bad.yaml", "spheres:\n  - {center: [0, 0, 0], radius: 1, material: nope}\n")
	if _, err := New(bad, 0); err == nil {
		t.Error("Expected error for unknown material reference")
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(yamlScene), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.yml"), []byte("name: Alpha\n"+yamlScene), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	all, err := ListAllScenes(dir, nil)
	if err != nil {
		t.Fatalf("ListAllScenes failed: %v", err)
	}
	if len(all) != len(List())+2 {
		t.Fatalf("Expected %d scenes, got %d", len(List())+2, len(all))
	}

	files := all[len(List()):]
	if files[0].DisplayName != "Alpha" || files[1].DisplayName != "b" {
		t.Errorf("Unexpected file scenes %+v", files)
	}
	for _, info := range files {
		if info.Type != "yaml" || info.ID != info.FilePath || !IsSceneFile(info.ID) {
			t.Errorf("Unexpected file scene info %+v", info)
		}
		if _, err := New(info.ID, 0); err != nil {
			t.Errorf("Listed scene %q does not load: %v", info.ID, err)
		}
	}

	none, err := ListAllScenes(filepath.Join(dir, "absent"), nil)
	if err != nil || len(none) != len(List()) {
		t.Errorf("Missing directory should list only built-ins, got %v %v", none, err)
	}
}

func TestListYAMLScenesSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(yamlScene), 0644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("spheres: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	observed, logs := observer.New(zapcore.WarnLevel)
	files, err := ListYAMLScenes(dir, zap.New(observed))
	if err != nil {
		t.Fatalf("ListYAMLScenes failed: %v", err)
	}
	if len(files) != 1 || files[0].DisplayName != "good" {
		t.Errorf("Expected only the good scene, got %+v", files)
	}

	warnings := logs.FilterMessage("skipping scene file").All()
	if len(warnings) != 1 {
		t.Fatalf("Expected one warning, got %v", logs.All())
	}
	if path := warnings[0].ContextMap()["path"]; path != broken {
		t.Errorf("Expected warning for %s, got %v", broken, path)
	}

	all, err := ListAllScenes(dir, nil)
	if err != nil || len(all) != len(List())+1 {
		t.Errorf("Expected built-ins plus one file, got %d scenes (%v)", len(all), err)
	}
}

func TestBundledSceneFiles(t *testing.T) {
	observed, logs := observer.New(zapcore.WarnLevel)
	files, err := ListYAMLScenes(filepath.Join("..", "..", "scenes"), zap.New(observed))
	if err != nil {
		t.Fatalf("ListYAMLScenes failed: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("Bundled scene files should all load, got warnings %v", logs.All())
	}
	if len(files) == 0 {
		t.Error("Expected bundled scene files")
	}
	for _, info := range files {
		if _, err := New(info.FilePath, 0); err != nil {
			t.Errorf("Bundled scene %s does not load: %v", info.FilePath, err)
		}
	}
}

func TestToSceneFileRoundTrip(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			original, err := New(name, 3)
			if err != nil {
				t.Fatal(err)
			}

			sf, err := original.ToSceneFile()
			if err != nil {
				t.Fatalf("ToSceneFile failed: %v", err)
			}
			path := filepath.Join(t.TempDir(), name+".yaml")
			if err := loaders.SaveSceneFile(path, sf); err != nil {
				t.Fatalf("SaveSceneFile failed: %v", err)
			}

			loaded, err := New(path, 0)
			if err != nil {
				t.Fatalf("Exported scene does not load: %v", err)
			}
			if loaded.Name != original.Name {
				t.Errorf("Expected name %q, got %q", original.Name, loaded.Name)
			}
			if loaded.CameraConfig != original.CameraConfig {
				t.Errorf("Camera changed:\n got %+v\nwant %+v", loaded.CameraConfig, original.CameraConfig)
			}
			if loaded.SamplingConfig != original.SamplingConfig {
				t.Errorf("Sampling changed: got %+v, want %+v", loaded.SamplingConfig, original.SamplingConfig)
			}
			if loaded.Background != original.Background {
				t.Errorf("Background changed: got %+v, want %+v", loaded.Background, original.Background)
			}

			want, got := spheres(t, original), spheres(t, loaded)
			if len(got) != len(want) {
				t.Fatalf("Expected %d spheres, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i].Center != want[i].Center || got[i].Radius != want[i].Radius {
					t.Fatalf("Sphere %d moved: got %+v, want %+v", i, got[i], want[i])
				}
				if !sameMaterial(got[i].Material, want[i].Material) {
					t.Fatalf("Sphere %d material changed: got %+v, want %+v", i, got[i].Material, want[i].Material)
				}
				// Shared instances stay shared
				for j := 0; j < i; j++ {
					if (want[i].Material == want[j].Material) != (got[i].Material == got[j].Material) {
						t.Fatalf("Material sharing between spheres %d and %d changed", j, i)
					}
				}
			}
		})
	}
}

func TestToSceneFileRejectsUnknownMaterial(t *testing.T) {
	s := newScene("custom", renderer.DefaultCameraConfig(), 10, 10)
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, nil))
	if _, err := s.ToSceneFile(); err == nil {
		t.Error("Expected error for a sphere without a known material")
	}
}

func sameMaterial(a, b material.Material) bool {
	switch a := a.(type) {
	case *material.Lambertian:
		b, ok := b.(*material.Lambertian)
		return ok && *a == *b
	case *material.Metal:
		b, ok := b.(*material.Metal)
		return ok && *a == *b
	case *material.Dielectric:
		b, ok := b.(*material.Dielectric)
		return ok && *a == *b
	}
	return false
}
