package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestParseCard(t *testing.T) {
	for in, want := range map[string]Card{
		"velocity":   CardVelocity,
		" Pressure ": CardPressure,
		"空化分布":       CardCavitation,
		"stress":     CardStress,
	} {
		got, err := ParseCard(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCard("temperature")
	assert.Error(t, err)
}

func TestParseButton(t *testing.T) {
	b, err := ParseButton("streamline")
	require.NoError(t, err)
	assert.Equal(t, ButtonStreamline, b)

	b, err = ParseButton("剖面")
	require.NoError(t, err)
	assert.Equal(t, ButtonProfile, b)

	b, err = ParseButton("")
	require.NoError(t, err)
	assert.Equal(t, ButtonNone, b)

	_, err = ParseButton("zoom")
	assert.Error(t, err)
}

func TestButtonsFor(t *testing.T) {
	assert.Equal(t, []Button{ButtonReset, ButtonGeometry, ButtonProfile, ButtonStreamline}, ButtonsFor(CardVelocity))
	assert.Equal(t, []Button{ButtonReset, ButtonGeometry}, ButtonsFor(CardVortex))
	assert.Equal(t, []Button{ButtonReset, ButtonGeometry, ButtonProfile}, ButtonsFor(CardStress))

	assert.True(t, ButtonAvailable(CardCavitation, ButtonNone))
	assert.False(t, ButtonAvailable(CardPressure, ButtonStreamline))
}

func TestDefaultMode(t *testing.T) {
	assert.Equal(t, Mode{Card: CardVelocity, Profile: ProfileHorizontal}, DefaultMode(DomainFluid))
	assert.Equal(t, CardDisplacement, DefaultMode(DomainStructural).Card)
	assert.Equal(t, DomainStructural, CardDisplacement.Domain())
}

func TestCardSummaries_Fluid(t *testing.T) {
	r := &SimulationResult{Domain: DomainFluid, Fluid: &FluidResult{
		Velocity: VelocityData{Max: ptr(12.5)},
		Pressure: PressureData{VolutePressure: ptr(1.234)},
		Vortex:   VortexData{VortexConcentrationLocation: "尾水管"},
	}}
	cards := CardSummaries(r)
	require.Len(t, cards, 4)

	assert.Equal(t, CardVelocity, cards[0].Card)
	assert.Equal(t, "12.50 m/s", cards[0].Items[0].Value)
	assert.Equal(t, " ", cards[0].Items[1].Value, "missing volute velocity keeps its blank placeholder")
	assert.Equal(t, "1.23 MPa", cards[1].Items[1].Value)
	assert.Equal(t, "", cards[2].Items[0].Value)
	assert.Equal(t, "尾水管", cards[3].Items[0].Value)
}

func TestCardSummaries_Structural(t *testing.T) {
	r := &SimulationResult{Domain: DomainStructural, Structural: &StructuralResult{
		Deplace: DisplacementData{Max: ptr(0.01234), MaxDisplacementLocation: "顶盖"},
	}}
	cards := CardSummaries(r)
	require.Len(t, cards, 2)
	assert.Equal(t, "0.0123 mm", cards[0].Items[0].Value)
	assert.Equal(t, "顶盖", cards[0].Items[1].Value)
	assert.Equal(t, "--", cards[1].Items[0].Value)
	assert.Equal(t, "--", cards[1].Items[1].Value)
}

func TestQueryParams_Values(t *testing.T) {
	v := QueryParams{EffectiveHead: 120.5, ActivePower: 300}.Values()
	assert.Equal(t, "120.5", v.Get("effective_head"))
	assert.Equal(t, "300", v.Get("active_power"))
}
