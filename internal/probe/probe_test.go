package probe

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

func velocityMesh() *scene.Mesh {
	data := mesh.NewData("/m.json", map[string]*mesh.Attribute{
		"position": {ItemSize: 3, Array: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}},
		"velocity": {ItemSize: 3, Array: []float64{0, 0, 0, 3, 4, 0, 1, 0, 0}},
	}, map[string]mesh.Range{"velocity": {Min: 0, Max: 5}})
	return scene.NewShaderMesh(data, "velocity", scene.ShaderOptions{MinValue: 0, MaxValue: 5, HasRange: true})
}

func TestProbe_NearestVertex(t *testing.T) {
	obj := velocityMesh()

	r, err := Probe([]scene.Object{obj}, model.CardVelocity, mgl64.Vec3{0.9, 0.1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Vertex)
	assert.Equal(t, obj.ID(), r.ObjectID)
	assert.InDelta(t, 5.0, r.Value, 1e-9, "vector attributes report their length")
	assert.Equal(t, "速度: 5.00 m/s", r.Text)
}

func TestProbe_WorldTransform(t *testing.T) {
	obj := velocityMesh()
	obj.SetTransform(scene.Transform{Position: mgl64.Vec3{10, 0, 0}, Scale: mgl64.Vec3{1, 1, 1}})

	r, err := Probe([]scene.Object{obj}, model.CardVelocity, mgl64.Vec3{10, 1, 0}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Vertex)
	assert.True(t, r.Position.ApproxEqual(mgl64.Vec3{10, 1, 0}))

	_, err = Probe([]scene.Object{obj}, model.CardVelocity, mgl64.Vec3{0, 0, 0}, 0.5)
	assert.ErrorIs(t, err, ErrNoHit)
}

func TestProbe_MissingAttribute(t *testing.T) {
	_, err := Probe([]scene.Object{velocityMesh()}, model.CardPressure, mgl64.Vec3{}, 0)
	assert.ErrorIs(t, err, ErrNoAttribute)

	_, err = Probe(nil, model.CardVelocity, mgl64.Vec3{}, 0)
	assert.ErrorIs(t, err, ErrNoAttribute)
}

func TestFormat(t *testing.T) {
	cases := []struct {
		card model.Card
		v    float64
		want string
	}{
		{model.CardPressure, 101325, "压力: 101325.00 Pa"},
		{model.CardCavitation, 0.5, "空化: 0.50"},
		{model.CardVortex, -12.25, "涡带: -12.25 Pa"},
		{model.CardDisplacement, 0.0012345678, "位移: 0.001235 mm"},
		{model.CardStress, 2.5e8, "应力: 250.00 MPa"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.card, tc.v), string(tc.card))
	}
}
