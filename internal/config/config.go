package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"isogrid/internal/logger"
	"isogrid/internal/loop"
	"isogrid/internal/mapgen"
	"isogrid/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location, relative to the process working directory.
const DefaultPath = "config/isogrid.yaml"

// Config is the full program configuration. Every field has a default, so an
// absent file or an absent key falls back to the built-in scene.
type Config struct {
	Window Window `yaml:"window"`
	Grid   Grid   `yaml:"grid"`
	Camera Camera `yaml:"camera"`
	Render Render `yaml:"render"`
	Log    Log    `yaml:"log"`
}

// Window holds the window size and title.
type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// VSync lets the driver present on the monitor's refresh instead of immediately.
	VSync bool `yaml:"vsync"`
	// ShowMemAlloc adds heap usage to the FPS summary in the title.
	ShowMemAlloc bool `yaml:"show_mem_alloc"`
}

// Grid maps onto mapgen.GridOptions.
type Grid struct {
	Columns    int     `yaml:"columns"`
	Rows       int     `yaml:"rows"`
	TileWidth  float32 `yaml:"tile_width"`
	TileHeight float32 `yaml:"tile_height"`
	RowStep    float32 `yaml:"row_step"`
	ZNear      float32 `yaml:"z_near"`
	ZFar       float32 `yaml:"z_far"`
}

// Camera is the orthographic box plus the view.
type Camera struct {
	Left      float32 `yaml:"left"`
	Right     float32 `yaml:"right"`
	Bottom    float32 `yaml:"bottom"`
	Top       float32 `yaml:"top"`
	Near      float32 `yaml:"near"`
	Far       float32 `yaml:"far"`
	ViewScale float32 `yaml:"view_scale"`
	LookAt    *LookAt `yaml:"look_at,omitempty"`
}

// LookAt switches the view from a uniform scale to a look-at camera.
type LookAt struct {
	Eye [3]float32 `yaml:"eye"`
	Dir [3]float32 `yaml:"dir"`
	Up  [3]float32 `yaml:"up"`
}

// Render holds frame pacing and texture settings.
type Render struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
	ClearColor    [4]float32    `yaml:"clear_color"`
	// Texture is an image path; empty uses the embedded road tile.
	Texture string `yaml:"texture"`
	// SRGB uploads the texture as sRGB and enables sRGB framebuffer writes.
	SRGB bool `yaml:"srgb"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration: a 1920×1080 window showing a 3×3
// grid of road tiles redrawn at 60 Hz.
func Default() Config {
	g := mapgen.DefaultGridOptions()
	s := scene.DefaultOptions()
	return Config{
		Window: Window{Width: 1920, Height: 1080, Title: "isogrid"},
		Grid: Grid{
			Columns:    g.Columns,
			Rows:       g.Rows,
			TileWidth:  g.TileWidth,
			TileHeight: g.TileHeight,
			RowStep:    g.RowStep,
			ZNear:      g.ZNear,
			ZFar:       g.ZFar,
		},
		Camera: Camera{
			Left:      s.Left,
			Right:     s.Right,
			Bottom:    s.Bottom,
			Top:       s.Top,
			Near:      s.Near,
			Far:       s.Far,
			ViewScale: s.ViewScale,
		},
		Render: Render{
			FrameInterval: loop.DefaultInterval,
			ClearColor:    s.ClearColor,
			SRGB:          true,
		},
		Log: Log{Level: "info", File: logger.DefaultFile},
	}
}

// Load reads the YAML file at path on top of Default(). A missing file is not
// an error and yields Default(); a file that does not parse or does not
// validate is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every setting the program cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if err := c.GridOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	cam := c.Camera
	if cam.Right == cam.Left {
		errs = append(errs, errors.New("camera: left and right must differ"))
	}
	if cam.Top == cam.Bottom {
		errs = append(errs, errors.New("camera: bottom and top must differ"))
	}
	if cam.Far == cam.Near {
		errs = append(errs, errors.New("camera: near and far must differ"))
	}
	if cam.LookAt == nil && cam.ViewScale <= 0 {
		errs = append(errs, fmt.Errorf("camera: view_scale must be positive, got %g", cam.ViewScale))
	}
	if la := cam.LookAt; la != nil {
		dir := mgl32.Vec3(la.Dir)
		if dir.Len() == 0 {
			errs = append(errs, errors.New("camera: look_at.dir must be non-zero"))
		} else if mgl32.Vec3(la.Up).Cross(dir).Len() == 0 {
			errs = append(errs, errors.New("camera: look_at.up must not be parallel to dir"))
		}
	}
	if c.Render.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("render: frame_interval must be positive, got %s", c.Render.FrameInterval))
	}
	return errors.Join(errs...)
}

// GridOptions returns the grid section as mapgen options.
func (c Config) GridOptions() mapgen.GridOptions {
	g := c.Grid
	return mapgen.GridOptions{
		Columns:    g.Columns,
		Rows:       g.Rows,
		TileWidth:  g.TileWidth,
		TileHeight: g.TileHeight,
		RowStep:    g.RowStep,
		ZNear:      g.ZNear,
		ZFar:       g.ZFar,
	}
}

// SceneOptions returns the camera and clear colour as scene options.
func (c Config) SceneOptions() scene.Options {
	cam := c.Camera
	o := scene.Options{
		Left:       cam.Left,
		Right:      cam.Right,
		Bottom:     cam.Bottom,
		Top:        cam.Top,
		Near:       cam.Near,
		Far:        cam.Far,
		ViewScale:  cam.ViewScale,
		ClearColor: c.Render.ClearColor,
	}
	if la := cam.LookAt; la != nil {
		o.Camera = &scene.Camera{Eye: la.Eye, Dir: la.Dir, Up: la.Up}
	}
	return o
}
