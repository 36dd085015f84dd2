package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hand-sword-fx/internal/config"
	"hand-sword-fx/internal/cue"
	"hand-sword-fx/internal/engine"
	"hand-sword-fx/internal/preview"
	"hand-sword-fx/internal/recording"
	"hand-sword-fx/internal/server"
	"hand-sword-fx/internal/snapshot"
	"hand-sword-fx/internal/source"
)

var (
	serveAddr   string
	serveReplay string
	serveLoop   bool
	serveRecord string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the frame loop with the websocket server",
	Long: `Runs the swarm at the configured frame rate.

Landmarks arrive on /ws/landmarks (or from --replay), frames and cue events
are streamed on /ws/frames. With preview.every > 0 every Nth frame is also
rendered to disk. The config file, when given, is watched and reloaded live.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveReplay, "replay", "", "Feed landmarks from a JSONL recording")
	serveCmd.Flags().BoolVar(&serveLoop, "loop", false, "Loop the replay")
	serveCmd.Flags().StringVar(&serveRecord, "record", "", "Append incoming landmarks to a JSONL file")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags.Addr = serveAddr
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveRecord != "" {
		cfg.Server.Record = serveRecord
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(cfg)
	slot := snapshot.New()
	hub := server.NewHub(logger.Named("hub"))
	cues := cue.NewDispatcher(cue.Multi{cue.LogPlayer{Log: logger.Named("cue")}, hub}, logger.Named("cue"))

	sinks := []engine.Sink{hub}
	if cfg.Preview.Every > 0 {
		exp, err := newExporter(cfg, logger.Named("preview"))
		if err != nil {
			return err
		}
		defer func() {
			if _, err := exp.Close(); err != nil {
				logger.Warn("preview manifest", zap.Error(err))
			}
		}()
		sinks = append(sinks, exp)
	}

	eng, err := engine.New(engine.Options{
		Config: store,
		Slot:   slot,
		Cues:   cues,
		Sinks:  sinks,
		Log:    logger.Named("engine"),
	})
	if err != nil {
		return err
	}

	var rec *recording.Writer
	if cfg.Server.Record != "" {
		f, err := os.OpenFile(cfg.Server.Record, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()
		rec = recording.NewWriter(f)
		defer func() {
			if err := rec.Flush(); err != nil {
				logger.Warn("flush recording", zap.Error(err))
			}
			logger.Info("recording closed", zap.String("path", cfg.Server.Record), zap.Int("samples", rec.Count()))
		}()
	}

	srv := server.New(server.Options{
		Addr:     cfg.Server.Addr,
		Config:   store,
		Slot:     slot,
		Stats:    eng,
		Recorder: rec,
		Hub:      hub,
		Log:      logger.Named("http"),
	})

	if configFile != "" {
		w, err := config.NewWatcher(configFile, loadConfig, store, logger.Named("config"))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	if serveReplay != "" {
		samples, err := readRecording(serveReplay)
		if err != nil {
			return err
		}
		rp := source.NewReplay(samples, slot, source.ReplayConfig{Loop: serveLoop, Log: logger.Named("replay")})
		if err := rp.Start(ctx); err != nil {
			return err
		}
		defer rp.Stop()
	}

	logger.Info("serving",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("count", cfg.Count),
		zap.Int("fps", cfg.FPS))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return cues.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	st := eng.Stats()
	logger.Info("stopped",
		zap.Uint64("frames", st.Frames),
		zap.Uint64("skipped", st.Skipped),
		zap.Uint64("cues", st.Cues))
	return nil
}

func newExporter(cfg config.Config, log *zap.Logger) (*preview.Exporter, error) {
	scene, err := buildScene(cfg)
	if err != nil {
		return nil, err
	}
	return preview.New(preview.Config{
		Dir:         cfg.Preview.Dir,
		Format:      cfg.Preview.Format,
		Width:       cfg.Preview.Width,
		Height:      cfg.Preview.Height,
		Supersample: cfg.Preview.Supersample,
		Every:       cfg.Preview.Every,
		Workers:     cfg.Preview.Workers,
		HUD:         cfg.Preview.HUD,
		Scene:       scene,
		Log:         log,
	})
}

func readRecording(path string) ([]recording.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	samples, err := recording.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
