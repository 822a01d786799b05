package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/resource"
	"github.com/daryltucker/turbine-viewer/internal/scene"
	"github.com/daryltucker/turbine-viewer/internal/testutil"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDecoder serves meshes built on demand and records requested URLs.
type fakeDecoder struct {
	mu       sync.Mutex
	meshes   map[string]func() *mesh.Data
	fail     map[string]error
	gate     chan struct{}
	requests []string
	built    []*mesh.Data
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		meshes: make(map[string]func() *mesh.Data),
		fail:   make(map[string]error),
	}
}

func (f *fakeDecoder) Decode(ctx context.Context, url string) (*mesh.Data, error) {
	f.mu.Lock()
	f.requests = append(f.requests, url)
	gate := f.gate
	build, ok := f.meshes[url]
	err := f.fail[url]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("404 not found")
	}
	d := build()
	f.mu.Lock()
	f.built = append(f.built, d)
	f.mu.Unlock()
	return d, nil
}

func (f *fakeDecoder) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// fieldMesh is a one-triangle mesh carrying attr with range metadata.
func fieldMesh(url, attr string, min, max float64) func() *mesh.Data {
	return func() *mesh.Data {
		attrs := map[string]*mesh.Attribute{
			"position": {ItemSize: 3, Array: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}},
		}
		ranges := map[string]mesh.Range{}
		if attr != "" {
			attrs[attr] = &mesh.Attribute{ItemSize: 1, Array: []float64{min, (min + max) / 2, max}}
			ranges[attr] = mesh.Range{Min: min, Max: max}
		}
		return mesh.NewData(url, attrs, ranges)
	}
}

func plainMesh(url string) func() *mesh.Data { return fieldMesh(url, "", 0, 0) }

func fluidResult() *model.SimulationResult {
	return &model.SimulationResult{
		ID:     "r1",
		Domain: model.DomainFluid,
		Fluid: &model.FluidResult{
			MeshJSON: "/m.json",
			Velocity: model.VelocityData{H: "/vh.json", V: "/vv.json", StreamLine: "/stream.json"},
			Pressure: model.PressureData{H: "/ph.json", V: "/pv.json"},
			VOF:      model.VOFData{MeshJSON: "/vof_mesh.json", VOF: "/vof.json"},
			Vortex:   model.VortexData{Vortex: "/vortex.json"},
		},
	}
}

func setup(t *testing.T) (*ModelLoader, *fakeDecoder, *resource.Manager, *scene.Scene) {
	t.Helper()
	testutil.UseTestLogger(t)
	dec := newFakeDecoder()
	sc := scene.NewScene()
	rm := resource.NewManager(sc)
	l := New(dec)
	l.SetResourceManager(rm)
	return l, dec, rm, sc
}

func onlyMesh(t *testing.T, rm *resource.Manager) *scene.Mesh {
	t.Helper()
	res := rm.Resources()
	require.Len(t, res, 1)
	m, ok := res[0].(*scene.Mesh)
	require.True(t, ok)
	return m
}

func shader(t *testing.T, m *scene.Mesh) *scene.ShaderMaterial {
	t.Helper()
	mat, ok := m.Material().(*scene.ShaderMaterial)
	require.True(t, ok, "material is %T", m.Material())
	return mat
}

func TestLoadModel_VelocityDefault(t *testing.T) {
	l, dec, rm, sc := setup(t)
	dec.meshes["/m.json"] = fieldMesh("/m.json", "velocity", 0, 5)

	mode := model.Mode{Card: model.CardVelocity, Button: model.ButtonNone}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	assert.Equal(t, []string{"/m.json"}, dec.Requests())
	obj := onlyMesh(t, rm)
	assert.True(t, sc.Contains(obj))
	assert.Equal(t, scene.KindShaderMesh, obj.Kind())

	mat := shader(t, obj)
	assert.Equal(t, "velocity", mat.Attribute)
	assert.True(t, mat.HasRange)
	assert.Equal(t, 0.0, mat.MinValue)
	assert.Equal(t, 5.0, mat.MaxValue)
	assert.False(t, mat.Flat())

	tr := obj.Transform()
	assert.Equal(t, mgl64.Vec3{}, tr.Position)
	assert.Equal(t, mgl64.Vec3{0, math.Pi / 2, 0}, tr.Rotation)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, tr.Scale)
}

func TestLoadModel_GeometryIgnoresField(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = fieldMesh("/m.json", "velocity", 0, 5)

	mode := model.Mode{Card: model.CardVelocity, Button: model.ButtonGeometry}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	mat := shader(t, onlyMesh(t, rm))
	assert.Equal(t, GeometryAttribute, mat.Attribute)
	assert.Equal(t, []uint32{0x888888}, mat.ColorList)
	assert.Equal(t, scene.MeshLambertMaterial, mat.MaterialType)
	assert.False(t, mat.HasRange)
}

func TestLoadModel_MeshRotatedOnDecode(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/vof_mesh.json"] = plainMesh("/vof_mesh.json")

	// The cavitation geometry view is not recentred, so decoded positions show through.
	mode := model.Mode{Card: model.CardCavitation, Button: model.ButtonGeometry}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	// (0,1,0) rotated -pi/2 about X lands on (0,0,-1).
	p := onlyMesh(t, rm).Data().Position(2)
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9), "got %v", p)
}

func TestLoadModel_EmptyURL(t *testing.T) {
	cases := map[string]struct {
		result *model.SimulationResult
		mode   model.Mode
	}{
		"velocity profile without slices": {
			result: &model.SimulationResult{ID: "r", Domain: model.DomainFluid, Fluid: &model.FluidResult{MeshJSON: "/m.json"}},
			mode:   model.Mode{Card: model.CardVelocity, Button: model.ButtonProfile, Profile: model.ProfileVertical},
		},
		"pressure streamline": {
			result: fluidResult(),
			mode:   model.Mode{Card: model.CardPressure, Button: model.ButtonStreamline},
		},
		"structural card on fluid result": {
			result: fluidResult(),
			mode:   model.Mode{Card: model.CardStress},
		},
		"streamline without urls": {
			result: &model.SimulationResult{ID: "r", Domain: model.DomainFluid, Fluid: &model.FluidResult{}},
			mode:   model.Mode{Card: model.CardVelocity, Button: model.ButtonStreamline},
		},
		"cavitation without vof": {
			result: &model.SimulationResult{ID: "r", Domain: model.DomainFluid, Fluid: &model.FluidResult{}},
			mode:   model.Mode{Card: model.CardCavitation},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l, dec, rm, sc := setup(t)
			dec.meshes["/m.json"] = plainMesh("/m.json")

			require.NoError(t, l.LoadModel(context.Background(), tc.result, tc.mode))
			assert.Equal(t, 0, rm.Len())
			assert.Empty(t, sc.Children())
			assert.Empty(t, dec.Requests())
		})
	}
}

func TestLoadModel_FallbackMaterial(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")

	mode := model.Mode{Card: model.CardPressure}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	obj := onlyMesh(t, rm)
	assert.Equal(t, scene.KindMesh, obj.Kind())
	mat, ok := obj.Material().(*scene.BasicMaterial)
	require.True(t, ok)
	assert.Equal(t, uint32(0), mat.Color)
	assert.Equal(t, 0.1, mat.Opacity)
	assert.True(t, mat.Transparent)
	assert.Equal(t, scene.DoubleSide, mat.Side)
}

func TestLoadModel_ProfileTransforms(t *testing.T) {
	cases := []struct {
		mode model.Mode
		url  string
		rot  mgl64.Vec3
	}{
		{model.Mode{Card: model.CardVelocity, Button: model.ButtonProfile, Profile: model.ProfileHorizontal}, "/vh.json", mgl64.Vec3{math.Pi / 2, math.Pi / 2, 0}},
		{model.Mode{Card: model.CardVelocity, Button: model.ButtonProfile, Profile: model.ProfileVertical}, "/vv.json", mgl64.Vec3{}},
		{model.Mode{Card: model.CardPressure, Button: model.ButtonProfile, Profile: model.ProfileVertical}, "/pv.json", mgl64.Vec3{}},
		{model.Mode{Card: model.CardPressure, Button: model.ButtonProfile}, "/ph.json", mgl64.Vec3{math.Pi / 2, math.Pi / 2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			l, dec, rm, _ := setup(t)
			dec.meshes[tc.url] = fieldMesh(tc.url, tc.mode.Card.Attribute(), -1, 1)

			require.NoError(t, l.LoadModel(context.Background(), fluidResult(), tc.mode))
			assert.Equal(t, []string{tc.url}, dec.Requests())
			assert.Equal(t, tc.rot, onlyMesh(t, rm).Transform().Rotation)
		})
	}
}

func TestLoadModel_Structural(t *testing.T) {
	l, dec, rm, _ := setup(t)
	res := &model.SimulationResult{
		ID:     "s1",
		Domain: model.DomainStructural,
		Structural: &model.StructuralResult{
			MeshJSON:   "/s.json",
			Deplace:    model.DisplacementData{Deplace: "/dep.json"},
			Contrainte: model.StressData{Contrainte: "/con.json"},
		},
	}
	dec.meshes["/s.json"] = fieldMesh("/s.json", "resu____DEPL", 0, 0.002)
	dec.meshes["/con.json"] = fieldMesh("/con.json", "resu____SIEQ_NOEU", 0, 3e8)

	require.NoError(t, l.LoadModel(context.Background(), res, model.DefaultMode(model.DomainStructural)))
	obj := onlyMesh(t, rm)
	assert.Equal(t, "resu____DEPL", shader(t, obj).Attribute)
	assert.Equal(t, scene.Identity(), obj.Transform())

	require.NoError(t, l.LoadModel(context.Background(), res, model.Mode{Card: model.CardStress, Button: model.ButtonProfile}))
	obj = onlyMesh(t, rm)
	assert.Equal(t, "resu____SIEQ_NOEU", shader(t, obj).Attribute)
	assert.Equal(t, mgl64.Vec3{math.Pi / 2, 0, 0}, obj.Transform().Rotation)
}

func TestLoadModel_Streamline(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")
	dec.meshes["/stream.json"] = func() *mesh.Data {
		return mesh.NewData("/stream.json", map[string]*mesh.Attribute{
			"position": {ItemSize: 3, Array: []float64{0, 0, 0, 1, 1, 1}},
			"velocity": {ItemSize: 1, Array: []float64{0, 8}},
			"color":    {ItemSize: 3, Array: []float64{0, 0, 1, 1, 0, 0}},
		}, map[string]mesh.Range{"velocity": {Min: 0, Max: 8}})
	}

	mode := model.Mode{Card: model.CardVelocity, Button: model.ButtonStreamline}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	require.Equal(t, 2, rm.Len())
	kinds := map[scene.Kind]*scene.Mesh{}
	for _, o := range rm.Resources() {
		m := o.(*scene.Mesh)
		kinds[m.Kind()] = m
		assert.Equal(t, mgl64.Vec3{-9, 6, 0}, m.Transform().Position)
		assert.Equal(t, mgl64.Vec3{0, math.Pi / 2, 0}, m.Transform().Rotation)
	}
	require.Contains(t, kinds, scene.KindMesh)
	require.Contains(t, kinds, scene.KindLineSegments)

	lines := kinds[scene.KindLineSegments].Material().(*scene.LineMaterial)
	assert.True(t, lines.VertexColors)
	base := kinds[scene.KindMesh].Material().(*scene.BasicMaterial)
	assert.True(t, base.Transparent)
}

func TestLoadModel_StreamlinePartialFailure(t *testing.T) {
	t.Run("streamline fails", func(t *testing.T) {
		l, dec, rm, _ := setup(t)
		dec.meshes["/m.json"] = plainMesh("/m.json")
		dec.fail["/stream.json"] = errors.New("connection reset")

		mode := model.Mode{Card: model.CardVelocity, Button: model.ButtonStreamline}
		require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))
		assert.Equal(t, scene.KindMesh, onlyMesh(t, rm).Kind())
	})
	t.Run("geometry fails", func(t *testing.T) {
		l, dec, rm, _ := setup(t)
		dec.meshes["/stream.json"] = plainMesh("/stream.json")
		dec.fail["/m.json"] = errors.New("invalid JSON")

		mode := model.Mode{Card: model.CardVelocity, Button: model.ButtonStreamline}
		require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))
		obj := onlyMesh(t, rm)
		assert.Equal(t, scene.KindLineSegments, obj.Kind())
		lines := obj.Material().(*scene.LineMaterial)
		assert.Equal(t, uint32(0xff0000), lines.Color, "no velocity data draws red lines")
	})
}

func TestLoadModel_Cavitation(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/vof_mesh.json"] = plainMesh("/vof_mesh.json")
	dec.meshes["/vof.json"] = fieldMesh("/vof.json", "phase_1_vof", 0, 1)

	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{Card: model.CardCavitation}))

	res := rm.Resources()
	require.Len(t, res, 2)
	base, derived := res[0].(*scene.Mesh), res[1].(*scene.Mesh)

	assert.Equal(t, mgl64.Vec3{0, 4.5, 0}, base.Transform().Position)
	assert.Equal(t, mgl64.Vec3{5, 5, 5}, base.Transform().Scale)
	assert.Equal(t, scene.KindMesh, base.Kind())

	assert.Equal(t, "phase_1_vof", shader(t, derived).Attribute)
	assert.Equal(t, mgl64.Vec3{0, 4.3, 0}, derived.Transform().Position)
	assert.Equal(t, mgl64.Vec3{5, 5, 5}, derived.Transform().Scale)
}

func TestLoadModel_SingleViewsRecentred(t *testing.T) {
	cases := map[string]struct {
		result *model.SimulationResult
		mode   model.Mode
		url    string
		attr   string
		center bool
	}{
		"fluid field":    {fluidResult(), model.Mode{Card: model.CardPressure}, "/m.json", "total_pressure", true},
		"fluid geometry": {fluidResult(), model.Mode{Card: model.CardPressure, Button: model.ButtonGeometry}, "/m.json", "total_pressure", true},
		"fluid profile":  {fluidResult(), model.Mode{Card: model.CardVelocity, Button: model.ButtonProfile, Profile: model.ProfileVertical}, "/vv.json", "velocity", true},
		"structural field": {
			&model.SimulationResult{ID: "s", Domain: model.DomainStructural, Structural: &model.StructuralResult{MeshJSON: "/m.json"}},
			model.Mode{Card: model.CardDisplacement}, "/m.json", "resu____DEPL", true,
		},
		"structural geometry": {
			&model.SimulationResult{ID: "s", Domain: model.DomainStructural, Structural: &model.StructuralResult{MeshJSON: "/m.json"}},
			model.Mode{Card: model.CardDisplacement, Button: model.ButtonGeometry}, "/m.json", "resu____DEPL", false,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l, dec, rm, _ := setup(t)
			dec.meshes[tc.url] = fieldMesh(tc.url, tc.attr, 0, 1)

			require.NoError(t, l.LoadModel(context.Background(), tc.result, tc.mode))

			obj := onlyMesh(t, rm)
			assert.Equal(t, tc.center, shader(t, obj).Center)
			box := obj.Data().ComputeBoundingBox()
			assert.Equal(t, tc.center, box.Center().ApproxEqual(mgl64.Vec3{}), "bounding box centre %v", box.Center())
		})
	}
}

func TestLoadModel_Vortex(t *testing.T) {
	l, dec, rm, sc := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")
	dec.meshes["/vortex.json"] = fieldMesh("/vortex.json", "total_pressure", -2, 8)

	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{Card: model.CardVortex}))
	assert.Equal(t, []string{"/m.json", "/vortex.json"}, dec.Requests())

	res := rm.Resources()
	require.Len(t, res, 2)
	base, derived := res[0].(*scene.Mesh), res[1].(*scene.Mesh)
	assert.True(t, sc.Contains(base))
	assert.True(t, sc.Contains(derived))

	assert.Equal(t, scene.KindMesh, base.Kind())
	baseMat := base.Material().(*scene.BasicMaterial)
	assert.True(t, baseMat.Transparent)
	assert.Equal(t, 0.1, baseMat.Opacity)

	assert.Equal(t, scene.KindShaderMesh, derived.Kind())
	mat := shader(t, derived)
	assert.Equal(t, "total_pressure", mat.Attribute)
	assert.True(t, mat.HasRange)
	assert.Equal(t, -2.0, mat.MinValue)
	assert.Equal(t, 8.0, mat.MaxValue)
	assert.False(t, mat.Center)

	want := scene.Transform{Position: mgl64.Vec3{-9, 6, 0}, Rotation: mgl64.Vec3{0, math.Pi / 2, 0}, Scale: mgl64.Vec3{1, 1, 1}}
	assert.Equal(t, want, base.Transform())
	assert.Equal(t, want, derived.Transform())
}

func TestLoadModel_CavitationLogsBaseBounds(t *testing.T) {
	l, dec, _, _ := setup(t)
	dec.meshes["/vof_mesh.json"] = plainMesh("/vof_mesh.json")
	dec.meshes["/vof.json"] = fieldMesh("/vof.json", "phase_1_vof", 0, 1)

	var buf bytes.Buffer
	prev := output.Logger
	output.SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { output.SetLogger(prev) })

	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{Card: model.CardCavitation}))
	assert.Contains(t, buf.String(), `"msg":"Base bounds"`)
	assert.Contains(t, buf.String(), `"url":"/vof_mesh.json"`)

	buf.Reset()
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{Card: model.CardVortex}))
	assert.NotContains(t, buf.String(), "Base bounds", "only cavitation bounds its base")
}

func TestLoadModel_CompositeGeometryOnly(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")
	dec.meshes["/vortex.json"] = fieldMesh("/vortex.json", "total_pressure", 0, 1)

	mode := model.Mode{Card: model.CardVortex, Button: model.ButtonGeometry}
	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), mode))

	assert.Equal(t, []string{"/m.json"}, dec.Requests(), "derived mesh is not fetched")
	mat := shader(t, onlyMesh(t, rm))
	assert.True(t, mat.Flat())
	assert.False(t, mat.Center)
}

func TestLoadModel_CompositeBaseFailureStillLoadsDerived(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.fail["/m.json"] = errors.New("timeout")
	dec.meshes["/vortex.json"] = plainMesh("/vortex.json")

	require.NoError(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{Card: model.CardVortex}))

	obj := onlyMesh(t, rm)
	mat := obj.Material().(*scene.BasicMaterial)
	assert.Equal(t, uint32(0xff0000), mat.Color, "derived fallback is red")
	assert.Equal(t, mgl64.Vec3{-9, 6, 0}, obj.Transform().Position)
}

func TestLoadModel_FullRebuild(t *testing.T) {
	l, dec, rm, sc := setup(t)
	for _, url := range []string{"/m.json", "/vh.json"} {
		dec.meshes[url] = fieldMesh(url, "velocity", 0, 5)
	}
	res := fluidResult()

	var previous []scene.Object
	for _, b := range []model.Button{model.ButtonNone, model.ButtonGeometry, model.ButtonProfile, model.ButtonNone} {
		require.NoError(t, l.LoadModel(context.Background(), res, model.Mode{Card: model.CardVelocity, Button: b}))
		require.Equal(t, 1, rm.Len(), "button %q", b)
		require.Len(t, sc.Children(), 1)
		for _, p := range previous {
			assert.False(t, sc.Contains(p))
			assert.Equal(t, 1, p.(*scene.Mesh).Data().DisposeCount())
		}
		previous = rm.Resources()
	}

	final := shader(t, onlyMesh(t, rm))
	assert.Equal(t, "velocity", final.Attribute)
	assert.True(t, final.HasRange)
}

func TestLoadModel_CancelledLoadRegistersNothing(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")
	dec.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.LoadModel(ctx, fluidResult(), model.DefaultMode(model.DomainFluid))
	}()
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, rm.Len())
}

func TestLoadModel_DisposedManager(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = plainMesh("/m.json")
	rm.Dispose()

	err := l.LoadModel(context.Background(), fluidResult(), model.DefaultMode(model.DomainFluid))
	assert.ErrorIs(t, err, resource.ErrDisposed)
	assert.Empty(t, dec.Requests())
}

func TestLoadModel_DisposedMidLoad(t *testing.T) {
	l, dec, rm, _ := setup(t)
	dec.meshes["/m.json"] = fieldMesh("/m.json", "velocity", 0, 5)
	dec.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- l.LoadModel(context.Background(), fluidResult(), model.DefaultMode(model.DomainFluid))
	}()

	require.Eventually(t, func() bool { return len(dec.Requests()) == 1 }, testTimeout, testTick)
	rm.Dispose()
	close(dec.gate)

	require.NoError(t, <-done)
	assert.Equal(t, 0, rm.Len())
	dec.mu.Lock()
	defer dec.mu.Unlock()
	require.Len(t, dec.built, 1)
	assert.Equal(t, 1, dec.built[0].DisposeCount(), "late object released by the disposed manager")
}

func TestLoadModel_Preconditions(t *testing.T) {
	l := New(newFakeDecoder())
	assert.ErrorIs(t, l.LoadModel(context.Background(), fluidResult(), model.Mode{}), ErrNoManager)

	l.SetResourceManager(resource.NewManager(scene.NewScene()))
	assert.ErrorIs(t, l.LoadModel(context.Background(), nil, model.Mode{}), ErrNilResult)
}
