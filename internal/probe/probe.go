// Package probe reads field values off the objects a slot currently shows.
// It picks the vertex closest to a world-space point and formats the value
// of the active card at that vertex.
package probe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

var (
	ErrNoHit       = errors.New("no vertex near probe point")
	ErrNoAttribute = errors.New("no object carries the probed attribute")
)

// Sampled is an object whose vertices can be probed in world space.
type Sampled interface {
	scene.Object
	Data() *mesh.Data
	WorldMatrix() mgl64.Mat4
}

// Reading is the value under the probe.
type Reading struct {
	ObjectID string `json:"object_id"`
	Vertex   int    `json:"vertex"`
	// Position is the vertex in world space.
	Position mgl64.Vec3 `json:"position"`
	Distance float64    `json:"distance"`
	Value    float64    `json:"value"`
	Text     string     `json:"text"`
}

// Probe finds the vertex nearest to point among objects carrying the card's
// attribute. A maxDist of zero or less disables the distance limit.
func Probe(objects []scene.Object, card model.Card, point mgl64.Vec3, maxDist float64) (Reading, error) {
	attr := card.Attribute()
	best := Reading{Distance: math.Inf(1), Vertex: -1}
	var bestAttr *mesh.Attribute
	carried := false

	for _, obj := range objects {
		s, ok := obj.(Sampled)
		if !ok || s.Data() == nil {
			continue
		}
		a, ok := s.Data().Attribute(attr)
		if !ok {
			continue
		}
		carried = true

		world := s.WorldMatrix()
		n := min(s.Data().VertexCount(), a.Count())
		for i := 0; i < n; i++ {
			p := mgl64.TransformCoordinate(s.Data().Position(i), world)
			if d := p.Sub(point).Len(); d < best.Distance {
				best = Reading{ObjectID: s.ID(), Vertex: i, Position: p, Distance: d}
				bestAttr = a
			}
		}
	}

	if !carried {
		return Reading{}, fmt.Errorf("%s: %w", attr, ErrNoAttribute)
	}
	if bestAttr == nil || (maxDist > 0 && best.Distance > maxDist) {
		return Reading{}, ErrNoHit
	}
	best.Value = bestAttr.Scalar(best.Vertex)
	best.Text = Format(card, best.Value)
	return best, nil
}

// Format renders a probed value as "label: value unit". Displacement keeps
// six decimals and stress is shown in MPa.
func Format(card model.Card, v float64) string {
	var s string
	switch card {
	case model.CardDisplacement:
		s = fmt.Sprintf("%.6f", v)
	case model.CardStress:
		s = fmt.Sprintf("%.2f", v/1e6)
	default:
		s = fmt.Sprintf("%.2f", v)
	}
	return strings.TrimSpace(fmt.Sprintf("%s: %s %s", card.Label(), s, card.Unit()))
}
