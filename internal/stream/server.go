/*
PURPOSE:
  HTTP front for running slots: JSON status and control endpoints plus a
  websocket that pushes every slot event as it happens.

REQUIREMENTS:
  User-specified:
  - Watch slot state, mode and registered resources live.
  - Drive the slots remotely: query, select card, press button, pick profile, probe.

  Implementation-discovered:
  - A new websocket client first gets one status event per slot, then the stream.
  - Slow clients miss events instead of blocking the slots (Bus is non-blocking).

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/serve.go
  - Uses: internal/viewer (Slot, Bus), internal/model, internal/output
  - Dependencies: github.com/go-chi/chi/v5, github.com/gorilla/websocket

ERROR HANDLING:
  - Slot errors map to HTTP statuses (see statusFor); bodies are {"error": "..."}.
  - Websocket write failures drop the client.

USAGE:
  srv := stream.New(bus, slots...)
  err := srv.Serve(ctx, cfg.Listen)

RELATED FILES:
  - internal/viewer/events.go
  - internal/viewer/slot.go
*/

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/probe"
	"github.com/daryltucker/turbine-viewer/internal/scene"
	"github.com/daryltucker/turbine-viewer/internal/viewer"
)

const writeWait = 5 * time.Second

// Server exposes slots over HTTP and websocket.
type Server struct {
	bus      *viewer.Bus
	slots    map[string]*viewer.Slot
	order    []string
	upgrader websocket.Upgrader
}

func New(bus *viewer.Bus, slots ...*viewer.Slot) *Server {
	s := &Server{
		bus:   bus,
		slots: make(map[string]*viewer.Slot, len(slots)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, sl := range slots {
		s.slots[sl.Name()] = sl
		s.order = append(s.order, sl.Name())
	}
	return s
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, requestLogger)

	r.Get("/ws", s.handleWS)
	r.Route("/api/slots", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Post("/query", s.handleQuery)
			r.Post("/card", s.handleCard)
			r.Post("/button", s.handleButton)
			r.Post("/profile", s.handleProfile)
			r.Get("/probe", s.handleProbe)
		})
	})
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		output.Logger.Info("Serving slot stream", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		output.Logger.Debug("Shutting down slot stream")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// ResourceStatus describes one registered object.
type ResourceStatus struct {
	ID   string     `json:"id"`
	Kind scene.Kind `json:"kind,omitempty"`
}

// SlotStatus is the JSON view of a slot.
type SlotStatus struct {
	Name      string              `json:"name"`
	State     viewer.State        `json:"state"`
	Mode      model.Mode          `json:"mode"`
	Buttons   []model.Button      `json:"buttons"`
	ResultID  string              `json:"result_id,omitempty"`
	Params    *model.QueryParams  `json:"params,omitempty"`
	Resources []ResourceStatus    `json:"resources"`
	Cards     []model.CardSummary `json:"cards,omitempty"`
}

// Status snapshots sl.
func Status(sl *viewer.Slot) SlotStatus {
	mode := sl.Mode()
	st := SlotStatus{
		Name:      sl.Name(),
		State:     sl.State(),
		Mode:      mode,
		Buttons:   model.ButtonsFor(mode.Card),
		Resources: []ResourceStatus{},
	}
	if res := sl.Result(); res != nil {
		st.ResultID = res.ID
		p := res.Params
		st.Params = &p
		st.Cards = model.CardSummaries(res)
	}
	for _, obj := range sl.Resources() {
		rs := ResourceStatus{ID: obj.ID()}
		if m, ok := obj.(*scene.Mesh); ok {
			rs.Kind = m.Kind()
		}
		st.Resources = append(st.Resources, rs)
	}
	return st
}

func (s *Server) slot(w http.ResponseWriter, r *http.Request) (*viewer.Slot, bool) {
	name := chi.URLParam(r, "name")
	sl, ok := s.slots[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown slot %q", name))
	}
	return sl, ok
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]SlotStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Status(s.slots[name]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if sl, ok := s.slot(w, r); ok {
		writeJSON(w, http.StatusOK, Status(sl))
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.slot(w, r)
	if !ok {
		return
	}
	var p model.QueryParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid query body: %w", err))
		return
	}
	s.respond(w, sl, sl.Query(r.Context(), p))
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.slot(w, r)
	if !ok {
		return
	}
	var body struct {
		Card string `json:"card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	card, err := model.ParseCard(body.Card)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, sl, sl.SelectCard(r.Context(), card))
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.slot(w, r)
	if !ok {
		return
	}
	var body struct {
		Button string `json:"button"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	b, err := model.ParseButton(body.Button)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, sl, sl.PressButton(r.Context(), b))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.slot(w, r)
	if !ok {
		return
	}
	var body struct {
		Profile string `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := model.ParseProfile(body.Profile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, sl, sl.SetProfile(r.Context(), p))
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.slot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var point mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		point[i] = v
	}
	maxDist := 0.0
	if raw := q.Get("max"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid max: %w", err))
			return
		}
		maxDist = v
	}

	reading, err := sl.Probe(point, maxDist)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) respond(w http.ResponseWriter, sl *viewer.Slot, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, Status(sl))
}

// handleWS streams slot events to one client until it disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		output.Logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := s.bus.Subscribe()
	defer s.bus.Unsubscribe(events)

	output.Logger.Debug("WebSocket client connected", "remote", r.RemoteAddr)
	defer output.Logger.Debug("WebSocket client disconnected", "remote", r.RemoteAddr)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, name := range s.order {
		sl := s.slots[name]
		st := Status(sl)
		e := viewer.Event{
			Slot:      st.Name,
			Kind:      viewer.EventState,
			State:     st.State,
			Mode:      st.Mode,
			ResultID:  st.ResultID,
			Resources: len(st.Resources),
			Time:      time.Now(),
		}
		if err := write(conn, e); err != nil {
			return
		}
	}

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := write(conn, e); err != nil {
				output.Logger.Debug("WebSocket write failed", "error", err)
				return
			}
		}
	}
}

func write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, viewer.ErrButtonUnavailable), errors.Is(err, viewer.ErrCardUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, viewer.ErrNoResult), errors.Is(err, viewer.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, viewer.ErrClosed):
		return http.StatusGone
	case errors.Is(err, probe.ErrNoHit), errors.Is(err, probe.ErrNoAttribute):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		output.Logger.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// requestLogger logs each request through the package logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		output.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
