// Package server exposes the live surfaces: landmark ingestion from a
// browser detector, the frame and cue stream for renderers, stats and the
// live configuration.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hand-sword-fx/internal/config"
	"hand-sword-fx/internal/engine"
	"hand-sword-fx/internal/recording"
	"hand-sword-fx/internal/snapshot"
)

// StatsSource reports loop counters; *engine.Engine implements it.
type StatsSource interface {
	Stats() engine.Stats
}

// Options wires a Server.
type Options struct {
	Addr     string
	Config   *config.Store
	Slot     *snapshot.Slot
	Stats    StatsSource       // optional
	Recorder *recording.Writer // optional; incoming landmarks are appended
	Hub      *Hub              // optional; created when nil
	Log      *zap.Logger
}

// Server is the HTTP + websocket front end.
type Server struct {
	opts       Options
	log        *zap.Logger
	hub        *Hub
	httpServer *http.Server
	start      time.Time

	samples  atomic.Uint64
	rejected atomic.Uint64
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(log)
	}
	s := &Server{opts: opts, log: log, hub: hub, start: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/config", s.handleGetConfig)
	r.Put("/api/config", s.handlePutConfig)
	r.Get("/ws/landmarks", s.handleLandmarks)
	r.Get("/ws/frames", hub.ServeWS)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub is the renderer fan-out.
func (s *Server) Hub() *Hub { return s.hub }

// Handler is the router, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.httpServer.Addr, err)
	}
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() { errc <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Uptime        string        `json:"uptime"`
	Engine        *engine.Stats `json:"engine,omitempty"`
	Renderers     int           `json:"renderers"`
	FramesDropped uint64        `json:"frames_dropped"`
	Samples       uint64        `json:"samples"`
	Rejected      uint64        `json:"rejected"`
	ConfigVersion uint64        `json:"config_version"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Uptime:        time.Since(s.start).Round(time.Second).String(),
		Renderers:     s.hub.Clients(),
		FramesDropped: s.hub.dropped.Load(),
		Samples:       s.samples.Load(),
		Rejected:      s.rejected.Load(),
	}
	if s.opts.Stats != nil {
		st := s.opts.Stats.Stats()
		resp.Engine = &st
	}
	if s.opts.Config != nil {
		resp.ConfigVersion = s.opts.Config.Version()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.opts.Config == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no live configuration"))
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Config.Get())
}

// handlePutConfig merges the body over the current configuration, so a
// partial document only changes the fields it names.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	if s.opts.Config == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no live configuration"))
		return
	}
	next := *s.opts.Config.Get()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode: %w", err))
		return
	}
	if err := s.opts.Config.Set(next); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	s.log.Info("config updated over http", zap.Uint64("version", s.opts.Config.Version()))
	writeJSON(w, http.StatusOK, s.opts.Config.Get())
}

// handleLandmarks reads detector samples and publishes them to the slot.
// Samples are not validated here; the frame loop skips malformed ones.
// When the detector disconnects the hand is cleared.
func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	if s.opts.Slot == nil {
		http.Error(w, "no snapshot slot", http.StatusServiceUnavailable)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("ws accept", zap.Error(err))
		return
	}
	conn.SetReadLimit(1 << 16)
	s.log.Info("detector connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.opts.Slot.Publish(nil)
		conn.Close(websocket.StatusNormalClosure, "")
		s.log.Info("detector disconnected", zap.String("remote", r.RemoteAddr))
	}()

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				s.log.Debug("detector read", zap.Error(err))
			}
			return
		}
		if typ != websocket.MessageText {
			s.rejected.Add(1)
			continue
		}
		var sample recording.Sample
		if err := json.Unmarshal(data, &sample); err != nil {
			s.rejected.Add(1)
			s.log.Debug("bad detector sample", zap.Error(err))
			continue
		}
		s.opts.Slot.Publish(sample.Pose())
		s.samples.Add(1)

		if s.opts.Recorder != nil {
			if err := s.opts.Recorder.Write(sample); err != nil {
				s.log.Warn("recording sample", zap.Error(err))
			}
		}
	}
}
