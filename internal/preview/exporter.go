// Package preview renders swarm frames to image files in the background.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hand-sword-fx/internal/postprocess"
	"hand-sword-fx/internal/raster"
	"hand-sword-fx/internal/swarm"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("preview: exporter closed")

// Config holds the shared settings of an export run.
type Config struct {
	Dir         string
	Format      string // webp | tga
	Width       int
	Height      int
	Supersample int
	Every       int // Consume keeps every Nth frame by sequence; <=1 keeps all
	Workers     int
	HUD         bool
	Scene       raster.Scene
	Log         *zap.Logger

	// ProgressEvery is the progress log interval; 0 means 2s.
	ProgressEvery time.Duration
}

// Exporter is a worker pool writing one image per submitted frame.
// Consume makes it an engine sink.
type Exporter struct {
	cfg   Config
	log   *zap.Logger
	runID uuid.UUID
	start time.Time

	mu     sync.RWMutex
	closed bool
	jobs   chan *swarm.Frame

	wg   sync.WaitGroup
	done chan struct{}

	entriesMu sync.Mutex
	entries   []Entry

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64

	closeOnce sync.Once
	manifest  *Manifest
	closeErr  error
}

// New creates the output directory and starts the workers.
func New(cfg Config) (*Exporter, error) {
	switch cfg.Format {
	case "":
		cfg.Format = "webp"
	case "webp", "tga":
	default:
		return nil, fmt.Errorf("preview: unknown format %q", cfg.Format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Supersample < 1 {
		cfg.Supersample = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 2 * time.Second
	}
	if cfg.Scene.Mesh == nil {
		bd := cfg.Scene.Backdrop
		cfg.Scene = raster.DefaultScene()
		cfg.Scene.Backdrop = bd
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{
		cfg:   cfg,
		log:   log,
		runID: uuid.New(),
		start: time.Now(),
		jobs:  make(chan *swarm.Frame, cfg.Workers*2),
		done:  make(chan struct{}),
	}

	for w := 0; w < cfg.Workers; w++ {
		e.wg.Add(1)
		go e.worker()
	}
	go e.progress()

	log.Info("preview export started",
		zap.String("run", e.runID.String()),
		zap.String("dir", cfg.Dir),
		zap.String("format", cfg.Format),
		zap.Int("workers", cfg.Workers))
	return e, nil
}

// RunID identifies this export run in the manifest.
func (e *Exporter) RunID() uuid.UUID { return e.runID }

// Consume queues every Nth frame without blocking; frames arriving while the
// queue is full are dropped.
func (e *Exporter) Consume(f *swarm.Frame) {
	if e.cfg.Every > 1 && f.Seq%uint64(e.cfg.Every) != 0 {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	select {
	case e.jobs <- f:
	default:
		if n := e.dropped.Add(1); n == 1 || n%100 == 0 {
			e.log.Warn("preview queue full, dropping frames", zap.Uint64("dropped", n), zap.Uint64("frame", f.Seq))
		}
	}
}

// Submit queues f, blocking until a worker has room or ctx is done.
func (e *Exporter) Submit(ctx context.Context, f *swarm.Frame) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	select {
	case e.jobs <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains queued frames, stops the workers and writes manifest.json.
// Later calls return the first result.
func (e *Exporter) Close() (*Manifest, error) {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.jobs)
		e.mu.Unlock()

		e.wg.Wait()
		close(e.done)

		e.entriesMu.Lock()
		frames := append([]Entry(nil), e.entries...)
		e.entriesMu.Unlock()

		e.manifest = &Manifest{
			RunID:   e.runID.String(),
			Created: e.start.UTC(),
			Format:  e.cfg.Format,
			Width:   e.cfg.Width,
			Height:  e.cfg.Height,
			Frames:  frames,
			Dropped: e.dropped.Load(),
			Failed:  e.failed.Load(),
		}
		e.closeErr = WriteManifest(filepath.Join(e.cfg.Dir, "manifest.json"), e.manifest)

		e.log.Info("preview export finished",
			zap.String("run", e.runID.String()),
			zap.Uint64("written", e.written.Load()),
			zap.Uint64("dropped", e.dropped.Load()),
			zap.Uint64("failed", e.failed.Load()),
			zap.Duration("elapsed", time.Since(e.start)))
	})
	return e.manifest, e.closeErr
}

// Stats reports written, dropped and failed frame counts.
func (e *Exporter) Stats() (written, dropped, failed uint64) {
	return e.written.Load(), e.dropped.Load(), e.failed.Load()
}

func (e *Exporter) progress() {
	ticker := time.NewTicker(e.cfg.ProgressEvery)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			if n := e.written.Load(); n > 0 {
				rate := float64(n) / time.Since(e.start).Seconds()
				e.log.Info("preview progress", zap.Uint64("written", n), zap.Float64("frames_per_sec", rate))
			}
		}
	}
}

func (e *Exporter) worker() {
	defer e.wg.Done()
	ss := e.cfg.Supersample
	r := raster.NewRenderer(e.cfg.Scene, e.cfg.Width*ss, e.cfg.Height*ss)
	for f := range e.jobs {
		entry, err := e.export(r, f)
		if err != nil {
			e.failed.Add(1)
			e.log.Error("preview frame failed", zap.Uint64("frame", f.Seq), zap.Error(err))
			continue
		}
		e.entriesMu.Lock()
		e.entries = append(e.entries, entry)
		e.entriesMu.Unlock()
		e.written.Add(1)
	}
}

func (e *Exporter) export(r *raster.Renderer, f *swarm.Frame) (Entry, error) {
	img := r.Render(f)
	if e.cfg.Supersample > 1 {
		img = postprocess.Downsample(img, e.cfg.Width, e.cfg.Height)
	}
	if e.cfg.HUD {
		lines := []string{f.Mode.String(), fmt.Sprintf("#%d  t=%.2fs  n=%d", f.Seq, f.Time, f.Len())}
		if f.Held {
			lines = append(lines, "held")
		}
		postprocess.Label(img, color.White, lines...)
	}

	name := fmt.Sprintf("frame_%06d.%s", f.Seq, e.cfg.Format)
	if err := writeImage(filepath.Join(e.cfg.Dir, name), e.cfg.Format, img); err != nil {
		return Entry{}, err
	}
	return Entry{Seq: f.Seq, Time: f.Time, Mode: f.Mode, Held: f.Held, Image: name}, nil
}

func writeImage(path, format string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, format, img)
}

// Encode writes img as WebP (lossless) or TGA.
func Encode(w io.Writer, format string, img image.Image) error {
	switch format {
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	case "tga":
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("tga encode: %w", err)
		}
	default:
		return fmt.Errorf("preview: unknown format %q", format)
	}
	return nil
}
