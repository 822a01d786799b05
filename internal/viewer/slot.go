/*
PURPOSE:
  One viewport slot: fetches a simulation result for a set of query parameters,
  owns the scene container and resource manager built for that result, and
  reloads the scene whenever the visualization mode changes.

REQUIREMENTS:
  User-specified:
  - States: Idle -> Fetching -> Ready -> (Loading -> Ready)* -> Disposed.
  - A superseded fetch must never overwrite the state of a newer one.
  - A new result identity tears down and rebuilds the container; a mode change
    only reloads resources.
  - Teardown order: detach the renderer surface, dispose the manager, dispose
    the container.
  - Reset camera restores the pose captured when the container was built.

  Implementation-discovered:
  - The cancellation token is a generation counter compared under the mutex.
    The fetch context is cancelled as well so the HTTP request stops early.
  - Loads on one slot are serialized by loadMu: the running load is cancelled
    and awaited before the next one starts, so only one load ever writes to
    the manager.
  - Container rebuilds happen under loadMu too, which keeps the loader's
    manager binding and the container in step.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (view, serve), internal/viewer/comparison.go
  - Uses: internal/loader, internal/resource, internal/scene, internal/probe
  - Publishes: Event on the Bus for every transition.

ERROR HANDLING:
  - Fetch failures are logged and returned; the previous visualization stays.
  - Sub-load failures never surface here; the loader logs them.
  - Teardown errors are logged and do not stop the remaining steps.
  - Nothing panics across the slot boundary.

RELATED FILES:
  - internal/viewer/comparison.go
  - internal/loader/loader.go
*/

package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/daryltucker/turbine-viewer/internal/config"
	"github.com/daryltucker/turbine-viewer/internal/loader"
	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/probe"
	"github.com/daryltucker/turbine-viewer/internal/resource"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

var (
	ErrSuperseded        = errors.New("superseded by a newer request")
	ErrClosed            = errors.New("slot closed")
	ErrNoResult          = errors.New("no result displayed")
	ErrButtonUnavailable = errors.New("button not available for card")
	ErrCardUnavailable   = errors.New("card not available for domain")
)

// State of a slot.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDisposed State = "disposed"
)

// Fetcher retrieves simulation results.
type Fetcher interface {
	Result(ctx context.Context, domain model.Domain, params model.QueryParams) (*model.SimulationResult, error)
}

// Options configures a Slot.
type Options struct {
	Name    string
	Domain  model.Domain
	Fetcher Fetcher
	Decoder mesh.Decoder
	// Host is where containers mount their surface. Nil gets a private host.
	Host   *scene.Host
	Camera config.CameraConfig
	Bus    *Bus
}

// Slot is one independently updating viewport.
type Slot struct {
	name    string
	domain  model.Domain
	fetcher Fetcher
	loader  *loader.ModelLoader
	host    *scene.Host
	camera  config.CameraConfig
	bus     *Bus

	// loadMu serializes container rebuilds and loads.
	loadMu sync.Mutex

	mu          sync.Mutex
	state       State
	gen         uint64
	fetchCancel context.CancelFunc
	loadSeq     uint64
	loadCancel  context.CancelFunc
	result      *model.SimulationResult
	mode        model.Mode
	container   *scene.Container
	manager     *resource.Manager
	pose        scene.CameraPose
	closed      bool
}

func NewSlot(o Options) *Slot {
	if o.Domain == "" {
		o.Domain = model.DomainFluid
	}
	if o.Host == nil {
		o.Host = scene.NewHost(o.Name)
	}
	return &Slot{
		name:    o.Name,
		domain:  o.Domain,
		fetcher: o.Fetcher,
		loader:  loader.New(o.Decoder),
		host:    o.Host,
		camera:  o.Camera,
		bus:     o.Bus,
		state:   StateIdle,
		mode:    model.DefaultMode(o.Domain),
	}
}

func (s *Slot) Name() string         { return s.name }
func (s *Slot) Domain() model.Domain { return s.domain }
func (s *Slot) Host() *scene.Host    { return s.host }

func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result is the displayed result, nil before the first successful fetch.
func (s *Slot) Result() *model.SimulationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Slot) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Container is the current scene container, nil when nothing is displayed.
func (s *Slot) Container() *scene.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.container
}

// Resources lists the objects currently registered for the slot.
func (s *Slot) Resources() []scene.Object {
	s.mu.Lock()
	m := s.manager
	s.mu.Unlock()
	if m == nil {
		return nil
	}
	return m.Resources()
}

// Probe reads the active card's value at the vertex nearest to point.
func (s *Slot) Probe(point mgl64.Vec3, maxDist float64) (probe.Reading, error) {
	mode := s.Mode()
	return probe.Probe(s.Resources(), mode.Card, point, maxDist)
}

// Query fetches the result for params and displays it. A Query started later
// supersedes this one: its response is discarded and ErrSuperseded returned.
func (s *Slot) Query(ctx context.Context, params model.QueryParams) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	gen := s.gen
	if s.fetchCancel != nil {
		s.fetchCancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.fetchCancel = cancel
	s.setStateLocked(StateFetching)
	s.mu.Unlock()

	output.Logger.Info("Fetching result", "slot", s.name, "params", params.String())
	res, err := s.fetcher.Result(fctx, s.domain, params)
	if err == nil && res == nil {
		err = ErrNoResult
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if gen != s.gen {
		s.mu.Unlock()
		output.Logger.Debug("Discarding superseded result", "slot", s.name, "params", params.String())
		return ErrSuperseded
	}
	s.fetchCancel = nil
	if err != nil {
		if s.result != nil {
			s.setStateLocked(StateReady)
		} else {
			s.setStateLocked(StateIdle)
		}
		s.mu.Unlock()
		output.Logger.Error("Failed to fetch result", "slot", s.name, "params", params.String(), "error", err)
		s.publish(EventError, err)
		return fmt.Errorf("fetch %s: %w", params, err)
	}

	s.result = res
	s.mode = model.DefaultMode(s.domain)
	if s.loadCancel != nil {
		s.loadCancel()
	}
	s.setStateLocked(StateReady)
	s.mu.Unlock()
	s.publish(EventResult, nil)

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	closed, stale := s.closed, s.result != res
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if stale {
		return ErrSuperseded
	}

	s.teardown()
	s.build()
	return s.runLoad(ctx, res)
}

// SetMode switches the visualization mode and reloads the scene.
func (s *Slot) SetMode(ctx context.Context, m model.Mode) error {
	if m.Profile == "" {
		m.Profile = model.ProfileHorizontal
	}

	s.mu.Lock()
	if err := s.checkModeLocked(m); err != nil {
		s.mu.Unlock()
		return err
	}
	if m == s.mode {
		s.mu.Unlock()
		return nil
	}
	s.mode = m
	if s.loadCancel != nil {
		s.loadCancel()
	}
	res := s.result
	s.mu.Unlock()
	s.publish(EventMode, nil)

	return s.load(ctx, res)
}

func (s *Slot) checkModeLocked(m model.Mode) error {
	switch {
	case s.closed:
		return ErrClosed
	case s.result == nil:
		return ErrNoResult
	case m.Card.Domain() != s.domain || !m.Card.Valid():
		return fmt.Errorf("%w: %s on %s", ErrCardUnavailable, m.Card, s.domain)
	case m.Button == model.ButtonReset || !model.ButtonAvailable(m.Card, m.Button):
		return fmt.Errorf("%w: %q on %s", ErrButtonUnavailable, m.Button, m.Card)
	}
	return nil
}

// SelectCard makes card active. The active button is kept when the card
// offers it and reset to none otherwise.
func (s *Slot) SelectCard(ctx context.Context, card model.Card) error {
	m := s.Mode()
	m.Card = card
	if !model.ButtonAvailable(card, m.Button) {
		m.Button = model.ButtonNone
	}
	return s.SetMode(ctx, m)
}

// PressButton handles a button press: reset restores the camera, any other
// button toggles, and pressing the active button returns to none.
func (s *Slot) PressButton(ctx context.Context, b model.Button) error {
	if b == model.ButtonReset {
		return s.ResetCamera()
	}
	m := s.Mode()
	if m.Button == b {
		m.Button = model.ButtonNone
	} else {
		m.Button = b
	}
	return s.SetMode(ctx, m)
}

// SetProfile picks the slice orientation. The scene reloads only while the
// profile view is active.
func (s *Slot) SetProfile(ctx context.Context, p model.Profile) error {
	m := s.Mode()
	m.Profile = p
	if m.Button == model.ButtonProfile {
		return s.SetMode(ctx, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.mode.Profile = p
	return nil
}

// ResetCamera restores the camera pose captured when the container was built.
func (s *Slot) ResetCamera() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	c := s.container
	if c == nil {
		s.mu.Unlock()
		return ErrNoResult
	}
	c.RestorePose(s.pose)
	s.mu.Unlock()

	s.publish(EventCameraReset, nil)
	return nil
}

// Close cancels outstanding work and tears the slot down. Idempotent.
func (s *Slot) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.fetchCancel != nil {
		s.fetchCancel()
		s.fetchCancel = nil
	}
	if s.loadCancel != nil {
		s.loadCancel()
	}
	s.setStateLocked(StateDisposed)
	s.mu.Unlock()

	s.loadMu.Lock()
	s.teardown()
	s.loadMu.Unlock()

	s.publish(EventState, nil)
	output.Logger.Debug("Slot closed", "slot", s.name)
	return nil
}

// load waits for the running load to finish, then loads the current mode.
func (s *Slot) load(ctx context.Context, res *model.SimulationResult) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.runLoad(ctx, res)
}

// runLoad loads the current mode for res. loadMu must be held.
func (s *Slot) runLoad(ctx context.Context, res *model.SimulationResult) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.result != res {
		s.mu.Unlock()
		return ErrSuperseded
	}
	mode := s.mode
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.loadSeq++
	seq := s.loadSeq
	s.loadCancel = cancel
	if s.fetchCancel == nil {
		s.setStateLocked(StateLoading)
	}
	s.mu.Unlock()

	err := s.loader.LoadModel(lctx, res, mode)

	s.mu.Lock()
	if s.loadSeq == seq {
		s.loadCancel = nil
	}
	if s.state == StateLoading {
		s.setStateLocked(StateReady)
	}
	closed := s.closed
	s.mu.Unlock()

	switch {
	case err == nil:
		s.publish(EventLoaded, nil)
		return nil
	case errors.Is(err, context.Canceled) && closed:
		return ErrClosed
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.Canceled):
		return ErrSuperseded
	}
	output.Logger.Warn("Load did not complete", "slot", s.name, "mode", mode.String(), "error", err)
	return err
}

// build creates the container for a new result and binds a fresh manager.
// loadMu must be held.
func (s *Slot) build() {
	c := scene.NewContainer(scene.ContainerOptions{Host: s.host, Antialias: true})

	c.Scene.AddLight(scene.Light{Kind: scene.AmbientLight, Color: 0xffffff, Intensity: 0.6})
	c.Scene.AddLight(scene.Light{Kind: scene.DirectionalLight, Color: 0xffffff, Intensity: 0.8, Position: mgl64.Vec3{-100, -100, 100}})
	c.Scene.AddLight(scene.Light{Kind: scene.DirectionalLight, Color: 0xffffff, Intensity: 0.4, Position: mgl64.Vec3{100, 100, 100}})

	c.Camera.Position = mgl64.Vec3(s.camera.Position)
	if s.camera.FOV > 0 {
		c.Camera.FOV = s.camera.FOV
	}
	c.Controls.Target = mgl64.Vec3(s.camera.Target)
	c.Controls.MaxPolarAngle = math.Pi
	c.Controls.MinPolarAngle = 0
	c.Controls.EnablePan = false
	c.Renderer.AutoClear = true
	c.Renderer.SetClearAlpha(0)
	c.Controls.Update()

	m := resource.NewManager(c.Scene)
	s.loader.SetResourceManager(m)

	s.mu.Lock()
	s.container = c
	s.manager = m
	s.pose = c.Pose()
	s.mu.Unlock()

	output.Logger.Debug("Container built", "slot", s.name, "container", c.ID)
}

// teardown detaches the surface, disposes the manager, then the container.
// loadMu must be held.
func (s *Slot) teardown() {
	s.mu.Lock()
	c, m := s.container, s.manager
	s.container, s.manager = nil, nil
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			output.Logger.Error("Panic during teardown", "slot", s.name, "panic", r)
		}
	}()
	if c == nil {
		if m != nil {
			m.Dispose()
		}
		return
	}

	if err := c.Renderer.Surface().Detach(); err != nil && !errors.Is(err, scene.ErrNotChild) {
		output.Logger.Warn("Detach failed", "slot", s.name, "container", c.ID, "error", err)
	}
	if m != nil {
		m.Dispose()
	}
	if err := c.Dispose(); err != nil {
		output.Logger.Warn("Container dispose failed", "slot", s.name, "container", c.ID, "error", err)
	}
	output.Logger.Debug("Container torn down", "slot", s.name, "container", c.ID)
}

func (s *Slot) setStateLocked(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.publishLocked(EventState, nil)
}

func (s *Slot) publish(kind EventKind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(kind, err)
}

func (s *Slot) publishLocked(kind EventKind, err error) {
	if s.bus == nil {
		return
	}
	e := Event{
		Slot:  s.name,
		Kind:  kind,
		State: s.state,
		Mode:  s.mode,
		Time:  time.Now(),
	}
	if s.result != nil {
		e.ResultID = s.result.ID
	}
	if s.manager != nil {
		e.Resources = s.manager.Len()
	}
	if err != nil {
		e.Error = err.Error()
	}
	s.bus.Publish(e)
}
