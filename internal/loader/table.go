package loader

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

// GeometryAttribute is the attribute painted by geometry-only views.
const GeometryAttribute = "_YAMI"

// Presentation constants shared by every strategy.
const (
	geometryColor   uint32 = 0x888888
	warningColor    uint32 = 0xff0000
	lineColor       uint32 = 0xffffff
	fallbackOpacity        = 0.1
)

// urlSelector picks one mesh URL out of a result. An empty string means the
// result has nothing to show for the mode.
type urlSelector func(r *model.SimulationResult) string

func none(*model.SimulationResult) string { return "" }

func fluid(pick func(f *model.FluidResult) string) urlSelector {
	return func(r *model.SimulationResult) string {
		if r == nil || r.Fluid == nil {
			return ""
		}
		return pick(r.Fluid)
	}
}

func structural(pick func(s *model.StructuralResult) string) urlSelector {
	return func(r *model.SimulationResult) string {
		if r == nil || r.Structural == nil {
			return ""
		}
		return pick(r.Structural)
	}
}

var (
	fluidMesh      = fluid(func(f *model.FluidResult) string { return f.MeshJSON })
	structuralMesh = structural(func(s *model.StructuralResult) string { return s.MeshJSON })
)

func transform(pos, rot mgl64.Vec3, scale float64) scene.Transform {
	return scene.Transform{Position: pos, Rotation: rot, Scale: mgl64.Vec3{scale, scale, scale}}
}

var (
	rotDefault     = mgl64.Vec3{0, math.Pi / 2, 0}
	rotProfileH    = mgl64.Vec3{math.Pi / 2, math.Pi / 2, 0}
	rotStructural  = mgl64.Vec3{math.Pi / 2, 0, 0}
	offsetSideView = mgl64.Vec3{-9, 6, 0}
)

type modeKey struct {
	card    model.Card
	button  model.Button
	profile model.Profile
}

// keyOf drops the profile orientation unless the profile view is active.
func keyOf(m model.Mode) modeKey {
	k := modeKey{card: m.Card, button: m.Button}
	if m.Button == model.ButtonProfile {
		k.profile = m.Profile
		if k.profile == "" {
			k.profile = model.ProfileHorizontal
		}
	}
	return k
}

type singleEntry struct {
	url       urlSelector
	transform scene.Transform
}

// singleTable resolves every single-model view. Combinations missing here have
// no visualization; entries with a none selector are known but not offered.
var singleTable = buildSingleTable()

func buildSingleTable() map[modeKey]singleEntry {
	t := make(map[modeKey]singleEntry)
	add := func(c model.Card, b model.Button, p model.Profile, url urlSelector, tr scene.Transform) {
		t[modeKey{card: c, button: b, profile: p}] = singleEntry{url: url, transform: tr}
	}
	upright := transform(mgl64.Vec3{}, rotDefault, 1)
	flatH := transform(mgl64.Vec3{}, rotProfileH, 1)
	tilted := transform(mgl64.Vec3{}, rotStructural, 1)

	add(model.CardVelocity, model.ButtonNone, "", fluidMesh, upright)
	add(model.CardVelocity, model.ButtonGeometry, "", fluidMesh, upright)
	add(model.CardVelocity, model.ButtonProfile, model.ProfileHorizontal,
		fluid(func(f *model.FluidResult) string { return f.Velocity.H }), flatH)
	add(model.CardVelocity, model.ButtonProfile, model.ProfileVertical,
		fluid(func(f *model.FluidResult) string { return f.Velocity.V }), scene.Identity())
	add(model.CardVelocity, model.ButtonStreamline, "", none, scene.Identity())

	add(model.CardPressure, model.ButtonNone, "", fluidMesh, upright)
	add(model.CardPressure, model.ButtonGeometry, "", fluidMesh, upright)
	add(model.CardPressure, model.ButtonProfile, model.ProfileHorizontal,
		fluid(func(f *model.FluidResult) string { return f.Pressure.H }), flatH)
	add(model.CardPressure, model.ButtonProfile, model.ProfileVertical,
		fluid(func(f *model.FluidResult) string { return f.Pressure.V }), scene.Identity())

	deplace := structural(func(s *model.StructuralResult) string { return s.Deplace.Deplace })
	contrainte := structural(func(s *model.StructuralResult) string { return s.Contrainte.Contrainte })
	for _, p := range []model.Profile{model.ProfileHorizontal, model.ProfileVertical} {
		add(model.CardDisplacement, model.ButtonProfile, p, deplace, tilted)
		add(model.CardStress, model.ButtonProfile, p, contrainte, tilted)
	}
	for _, c := range []model.Card{model.CardDisplacement, model.CardStress} {
		add(c, model.ButtonNone, "", structuralMesh, scene.Identity())
		add(c, model.ButtonGeometry, "", structuralMesh, scene.Identity())
	}
	return t
}

// lookupSingle resolves the URL and transform of a single-model view.
func lookupSingle(r *model.SimulationResult, m model.Mode) (string, scene.Transform) {
	e, ok := singleTable[keyOf(m)]
	if !ok {
		return "", scene.Identity()
	}
	return e.url(r), e.transform
}

// streamlineParts are the two independent loads of the streamline view.
var streamlineParts = struct {
	base, lines urlSelector
	transform   scene.Transform
}{
	base:      fluidMesh,
	lines:     fluid(func(f *model.FluidResult) string { return f.Velocity.StreamLine }),
	transform: transform(offsetSideView, rotDefault, 1),
}

// compositeSpec describes a base geometry plus a field-coloured derived mesh.
// boundBase logs the base bounding box once the mesh is decoded.
type compositeSpec struct {
	base             urlSelector
	baseTransform    scene.Transform
	boundBase        bool
	derived          urlSelector
	derivedAttr      string
	derivedTransform scene.Transform
}

var compositeTable = map[model.Card]compositeSpec{
	model.CardCavitation: {
		base:             fluid(func(f *model.FluidResult) string { return f.VOF.MeshJSON }),
		baseTransform:    transform(mgl64.Vec3{0, 4.5, 0}, mgl64.Vec3{}, 5),
		boundBase:        true,
		derived:          fluid(func(f *model.FluidResult) string { return f.VOF.VOF }),
		derivedAttr:      model.CardCavitation.Attribute(),
		derivedTransform: transform(mgl64.Vec3{0, 4.3, 0}, mgl64.Vec3{}, 5),
	},
	model.CardVortex: {
		base:             fluidMesh,
		baseTransform:    transform(offsetSideView, rotDefault, 1),
		derived:          fluid(func(f *model.FluidResult) string { return f.Vortex.Vortex }),
		derivedAttr:      model.CardVortex.Attribute(),
		derivedTransform: transform(offsetSideView, rotDefault, 1),
	},
}

type strategy int

const (
	strategySingle strategy = iota
	strategyStreamline
	strategyComposite
)

func (s strategy) String() string {
	switch s {
	case strategyStreamline:
		return "streamline"
	case strategyComposite:
		return "composite"
	}
	return "single"
}

func strategyFor(m model.Mode) strategy {
	if m.Card == model.CardVelocity && m.Button == model.ButtonStreamline {
		return strategyStreamline
	}
	if _, ok := compositeTable[m.Card]; ok {
		return strategyComposite
	}
	return strategySingle
}
