package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hand-sword-fx/internal/config"
	"hand-sword-fx/internal/cue"
	"hand-sword-fx/internal/engine"
	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/raster"
	"hand-sword-fx/internal/snapshot"
	"hand-sword-fx/internal/swarm"
	"hand-sword-fx/internal/texture"
)

var (
	renderEvery int
	renderTail  float64
)

var renderCmd = &cobra.Command{
	Use:   "render <recording.jsonl>",
	Short: "Render a recording to preview frames",
	Long: `Replays a landmark recording at a fixed frame rate and writes preview
images plus manifest.json. The run is deterministic for a given seed
(default 1) and configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVar(&renderEvery, "every", 0, "Write every Nth frame (default preview.every, or 1)")
	renderCmd.Flags().Float64Var(&renderTail, "tail", 1, "Seconds to keep rendering after the last sample")
}

// cueCounter logs cues inline; offline there is nothing to play them on.
type cueCounter struct {
	log *zap.Logger
	n   map[gesture.Mode]int
}

func (c *cueCounter) Dispatch(mode gesture.Mode) bool {
	cu, ok := cue.Lookup(mode)
	if !ok {
		return false
	}
	c.n[mode]++
	_ = cue.LogPlayer{Log: c.log}.Play(context.Background(), cu)
	return true
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	every := renderEvery
	if every <= 0 {
		every = max(cfg.Preview.Every, 1)
	}
	cfg.Preview.Every = every

	samples, err := readRecording(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("%s: no samples", args[0])
	}

	exp, err := newExporter(cfg, logger.Named("preview"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	slot := snapshot.New()
	cues := &cueCounter{log: logger.Named("cue"), n: make(map[gesture.Mode]int)}
	var submitErr error
	eng, err := engine.New(engine.Options{
		Config: config.NewStore(cfg),
		Slot:   slot,
		Cues:   cues,
		Sinks: []engine.Sink{engine.SinkFunc(func(f *swarm.Frame) {
			if submitErr == nil && f.Seq%uint64(every) == 0 {
				submitErr = exp.Submit(ctx, f)
			}
		})},
		Log: logger.Named("engine"),
	})
	if err != nil {
		exp.Close()
		return err
	}

	end := samples[len(samples)-1].T + renderTail
	dt := 1 / float64(cfg.FPS)
	frames := int(math.Ceil(end/dt)) + 1

	fmt.Printf("Rendering %s → %s\n", args[0], cfg.Preview.Dir)
	fmt.Printf("Samples: %d, Frames: %d @ %d fps, every %d, %dx%d %s\n",
		len(samples), frames, cfg.FPS, every, cfg.Preview.Width, cfg.Preview.Height, cfg.Preview.Format)
	fmt.Println("------------------------------------------------------------")
	start := time.Now()

	next := 0
	for i := 0; i < frames && submitErr == nil; i++ {
		t := float64(i) * dt
		for next < len(samples) && samples[next].T <= t {
			slot.Publish(samples[next].Pose())
			next++
		}
		eng.Step(t)
	}

	m, err := exp.Close()
	if submitErr != nil {
		return fmt.Errorf("render: %w", submitErr)
	}
	if err != nil {
		return err
	}

	st := eng.Stats()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Printf("Written: %d, failed: %d, skipped input frames: %d\n", len(m.Frames), m.Failed, st.Skipped)
	for _, mode := range gesture.Modes() {
		if n := cues.n[mode]; n > 0 {
			fmt.Printf("  cue %-8s ×%d\n", mode, n)
		}
	}
	fmt.Printf("Manifest: %s/manifest.json (run %s)\n", cfg.Preview.Dir, m.RunID)
	if m.Failed > 0 {
		return fmt.Errorf("%d frames failed", m.Failed)
	}
	return nil
}

// buildScene loads the optional backdrop sprite into the default scene.
func buildScene(cfg config.Config) (raster.Scene, error) {
	scene := raster.DefaultScene()
	if cfg.Preview.Backdrop != "" {
		img, err := texture.Load(cfg.Preview.Backdrop)
		if err != nil {
			return raster.Scene{}, err
		}
		scene.Backdrop = raster.NewBackdrop(img)
	}
	return scene, nil
}
