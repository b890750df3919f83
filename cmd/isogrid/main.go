package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"isogrid/internal/config"
	"isogrid/internal/debug"
	"isogrid/internal/env"
	"isogrid/internal/graphics"
	"isogrid/internal/logger"
	"isogrid/internal/loop"
	"isogrid/internal/mapgen"
	"isogrid/internal/scene"
	"isogrid/internal/texture"

	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	os.Exit(run(os.Stderr))
}

// run returns the process exit code. Every failure is reported exactly once
// on stderr: through the logger once it exists, as a plain line before that.
func run(stderr io.Writer) int {
	if err := env.Load(".env"); err != nil {
		fmt.Fprintln(stderr, "isogrid:", err)
		return 1
	}
	cfgPath := env.Get(env.ConfigVar, config.DefaultPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "isogrid:", err)
		return 1
	}

	log, err := logger.New(logger.Options{
		Level:   env.Get(env.LogLevelVar, cfg.Log.Level),
		File:    cfg.Log.File,
		Console: stderr,
	})
	if err != nil {
		fmt.Fprintln(stderr, "isogrid:", err)
		return 1
	}
	defer log.Close()
	log.Info("starting", "config", cfgPath,
		"grid", fmt.Sprintf("%dx%d", cfg.Grid.Columns, cfg.Grid.Rows),
		"interval", cfg.Render.FrameInterval)

	if err := render(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		return 1
	}
	log.Info("window closed")
	return 0
}

func render(cfg config.Config, log *logger.Logger) error {
	img, err := texture.Load(cfg.Render.Texture)
	if err != nil {
		return err
	}
	mesh := mapgen.BuildGrid(cfg.GridOptions())

	win, err := graphics.Open(graphics.WindowOptions{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		VSync:  cfg.Window.VSync,
		SRGB:   cfg.Render.SRGB,
	}, log.Logger)
	if err != nil {
		return err
	}
	defer win.Close()

	r, err := graphics.NewRenderer(win, mesh, img, graphics.RendererOptions{SRGB: cfg.Render.SRGB}, log.Logger)
	if err != nil {
		return err
	}
	defer r.Close()

	sc := scene.New(cfg.SceneOptions())
	first := mesh.Vertices[0].Position
	log.Debug("grid placement", "first_corner", first, "first_corner_ndc", sc.Frame().ToNDC(mgl32.Vec3(first)))

	stats := debug.Stats{ShowMemAlloc: cfg.Window.ShowMemAlloc}
	driver := loop.New(win, r, sc,
		loop.WithInterval(cfg.Render.FrameInterval),
		loop.WithLogger(log.Logger),
		loop.WithFrameHook(func(n uint64, at time.Time) {
			if text, ok := stats.Frame(at); ok {
				win.SetTitle(cfg.Window.Title + " | " + text)
				log.Info("frames", "presented", n, "rate", text)
			}
		}),
	)
	err = graphics.Guard("event loop", driver.Run)
	log.Info("render loop stopped", "state", driver.State(), "frames", driver.Frames())
	return err
}
