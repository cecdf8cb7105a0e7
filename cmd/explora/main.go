// Command explora renders voxel terrain chunks with WebGPU: a flat test grid by default, or chunks
// streamed around the camera with -stream.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine"
	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer"
	"github.com/Carmen-Shannon/oxy-terrain/engine/streamer"
	"github.com/Carmen-Shannon/oxy-terrain/engine/terrain"
	"github.com/Carmen-Shannon/oxy-terrain/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("[Explora] %v", err)
	}

	// ── Window ──────────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle("Explora"),
		window.WithSize(cfg.width, cfg.height),
	)

	// ── Renderer ────────────────────────────────────────────────────
	presentMode := renderer.PresentModeUncapped
	if cfg.vsync {
		presentMode = renderer.PresentModeVSync
	}
	msaa := renderer.MSAAOff
	if cfg.msaa {
		msaa = renderer.MSAA4x
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(cfg.software),
	)
	defer r.Release()

	if err := r.RegisterPipelines(terrain.NewPipeline(terrain.DefaultPipelineKey)); err != nil {
		log.Fatalf("[Explora] terrain pipeline: %v", err)
	}

	// ── Camera ──────────────────────────────────────────────────────
	centre := float32(chunk.Size) / 2
	if !cfg.streaming() && cfg.grid > 0 {
		centre = float32(cfg.grid*chunk.Size) / 2
	}
	cam := camera.NewCamera(
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithController(camera.NewCameraController(
			camera.WithTarget(mgl32.Vec3{centre, chunk.FlatHeight, centre}),
		)),
	)

	// ── Atlas + common bind group ───────────────────────────────────
	atlasImage, err := loadAtlas(cfg.atlasPath)
	if err != nil {
		log.Fatalf("[Explora] atlas: %v", err)
	}
	if err := terrain.InitCommonBindGroup(r, cam.BindGroupProvider(), atlasImage); err != nil {
		log.Fatalf("[Explora] %v", err)
	}
	atlas := mesh.NewDefaultAtlas()

	// ── Terrain ─────────────────────────────────────────────────────
	source, err := chunkSource(cfg.chunkDir)
	if err != nil {
		log.Fatalf("[Explora] %v", err)
	}
	var voxelOpts []terrain.VoxelsBuilderOption
	if cfg.alignment > 0 {
		voxelOpts = append(voxelOpts, terrain.WithAlignment(uint32(cfg.alignment)))
	}
	if !cfg.streaming() {
		voxelOpts = append(voxelOpts, terrain.WithTestGrid(source, atlas, cfg.grid))
	}
	voxels, err := terrain.NewVoxels(r, terrain.DefaultPipelineKey, voxelOpts...)
	if err != nil {
		log.Fatalf("[Explora] %v", err)
	}
	defer voxels.Release()

	var st streamer.Streamer
	if cfg.streaming() {
		st = streamer.NewStreamer(source, atlas,
			streamer.WithLoadRadius(int32(cfg.streamRadius)),
			streamer.WithWorkers(cfg.workers),
		)
		defer st.Close()
	}

	// ── Engine ──────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(cam),
		engine.WithDrawer(0, engine.NewTerrainDrawer(voxels, cam.BindGroupProvider())),
		engine.WithProfiling(cfg.profile),
	)

	// ── Input ───────────────────────────────────────────────────────
	input := window.NewInput(common.MouseButtonLeft)
	input.Attach(win)

	vsync, profiling := cfg.vsync, cfg.profile
	eng.SetUpdateCallback(func(dt float32) {
		actions := applyInput(input.Snapshot(), cam.Controller(), dt)
		if actions.toggleVSync {
			vsync = !vsync
			mode := renderer.PresentModeUncapped
			if vsync {
				mode = renderer.PresentModeVSync
			}
			r.SetPresentMode(mode)
			r.Resize(win.Width(), win.Height())
			log.Printf("[Explora] vsync %v", vsync)
		}
		if actions.toggleProfiler {
			profiling = !profiling
			if profiling {
				eng.EnableProfiler()
			} else {
				eng.DisableProfiler()
			}
		}

		if st != nil {
			target := cam.Controller().Target()
			st.SetCentre(chunk.FromWorld(target.X(), target.Z()))
			if _, err := st.Apply(voxels); err != nil {
				log.Printf("[Explora] streaming: %v", err)
			}
		}
	})

	log.Printf("[Explora] %d chunks ready, streaming %v", voxels.ChunkCount(), cfg.streaming())
	eng.Run()
}

// loadAtlas reads the atlas PNG at path, or builds the default atlas when path is empty.
func loadAtlas(path string) (common.TextureStagingData, error) {
	if path == "" {
		return mesh.DefaultAtlasImage()
	}
	return mesh.LoadAtlasImage(path)
}

// chunkSource returns flat generated chunks, persisted under dir when dir is set.
func chunkSource(dir string) (chunk.Source, error) {
	if dir == "" {
		return chunk.FlatSource{}, nil
	}
	return chunk.NewDiskSource(dir, chunk.FlatSource{})
}
