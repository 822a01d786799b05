/*
PURPOSE:
  Owns the renderable objects attached to one scene.
  Every object added here is released here: detach, geometry, then each material.

REQUIREMENTS:
  User-specified:
  - AddResource registers and attaches an object.
  - ClearAll detaches and releases everything and is idempotent.
  - Dispose clears and drops the scene; repeated calls never fail.

  Implementation-discovered:
  - Loads can finish after the owning slot was torn down. Adding to a
    disposed manager must not leak the object, so it is released on the spot.
  - One bad object must not stop the release of the rest.

ARCHITECTURE INTEGRATION:
  - Called by: internal/loader (AddResource, ClearAll), internal/viewer (Dispose)
  - Read by: internal/probe (Resources)
  - Uses: internal/scene, internal/output

ERROR HANDLING:
  - Release errors and panics are logged per object and iteration continues.
  - AddResource returns ErrNilResource / ErrDisposed; both leave the manager unchanged.

RELATED FILES:
  - internal/scene/object.go
  - internal/loader/loader.go
*/

package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

var (
	ErrDisposed    = errors.New("resource manager disposed")
	ErrNilResource = errors.New("nil resource")
)

// Scene is the part of a scene graph the manager mutates.
type Scene interface {
	Add(obj scene.Object)
	Remove(obj scene.Object)
}

// Manager is the sole owner of a small set of objects bound to one scene.
type Manager struct {
	mu        sync.Mutex
	scene     Scene
	resources []scene.Object
	disposed  bool
}

func NewManager(sc Scene) *Manager {
	return &Manager{scene: sc}
}

// AddResource takes ownership of obj and attaches it to the scene.
func (m *Manager) AddResource(obj scene.Object) error {
	if obj == nil {
		return ErrNilResource
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		if err := Release(obj); err != nil {
			output.Logger.Warn("Release after dispose failed", "object", obj.ID(), "error", err)
		}
		return ErrDisposed
	}
	defer m.mu.Unlock()
	m.resources = append(m.resources, obj)
	m.scene.Add(obj)
	return nil
}

// Resources returns a snapshot of the owned objects in insertion order.
func (m *Manager) Resources() []scene.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scene.Object(nil), m.resources...)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

func (m *Manager) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// ClearAll detaches and releases every owned object, then empties the list.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	owned := m.resources
	m.resources = nil
	sc := m.scene
	m.mu.Unlock()

	for _, obj := range owned {
		m.clearOne(sc, obj)
	}
}

func (m *Manager) clearOne(sc Scene, obj scene.Object) {
	defer func() {
		if r := recover(); r != nil {
			output.Logger.Error("Panic while releasing resource", "object", obj.ID(), "panic", r)
		}
	}()

	if sc != nil {
		sc.Remove(obj)
	}
	if err := Release(obj); err != nil {
		output.Logger.Warn("Resource release incomplete", "object", obj.ID(), "error", err)
	}
}

// Dispose clears every object and drops the scene. Further adds are refused.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	m.mu.Unlock()

	m.ClearAll()

	m.mu.Lock()
	m.scene = nil
	m.mu.Unlock()
}

// Release disposes the geometry and then every material of obj. All of them
// are attempted; their errors are joined.
func Release(obj scene.Object) error {
	var errs []error
	if g := obj.Geometry(); g != nil {
		if err := g.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("geometry: %w", err))
		}
	}
	for i, mat := range obj.Materials() {
		if mat == nil {
			continue
		}
		if err := mat.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("material %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
