package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// LightKind distinguishes ambient from directional lights.
type LightKind string

const (
	AmbientLight     LightKind = "ambient"
	DirectionalLight LightKind = "directional"
)

type Light struct {
	Kind      LightKind
	Color     uint32
	Intensity float64
	Position  mgl64.Vec3
}

// Scene is the object graph of one container.
type Scene struct {
	mu       sync.Mutex
	children []Object
	lights   []Light
}

func NewScene() *Scene {
	return &Scene{}
}

// Add attaches obj. Adding an attached object again is a no-op.
func (s *Scene) Add(obj Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.children {
		if c == obj {
			return
		}
	}
	s.children = append(s.children, obj)
}

// Remove detaches obj if attached.
func (s *Scene) Remove(obj Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == obj {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Contains reports whether obj is attached.
func (s *Scene) Contains(obj Object) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.children {
		if c == obj {
			return true
		}
	}
	return false
}

// Children returns a snapshot of the attached objects.
func (s *Scene) Children() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Object(nil), s.children...)
}

func (s *Scene) AddLight(l Light) {
	s.mu.Lock()
	s.lights = append(s.lights, l)
	s.mu.Unlock()
}

func (s *Scene) Lights() []Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Light(nil), s.lights...)
}

func (s *Scene) clear() {
	s.mu.Lock()
	s.children = nil
	s.lights = nil
	s.mu.Unlock()
}
