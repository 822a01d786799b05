/*
PURPOSE:
  Defines the core data structures shared by the viewer.
  Simulation results, operating conditions, strain points and the
  visualization mode that selects what gets rendered.

REQUIREMENTS:
  User-specified:
  - Fluid results carry velocity, pressure, cavitation (vof) and vortex data.
  - Structural results carry displacement (deplace) and stress (contrainte) data.
  - A mode is a card (field), a button (view style) and a profile orientation.

  Implementation-discovered:
  - JSON tags must match the backend payload field names exactly.
  - Card and button values are the labels the backend and the web client use,
    English aliases are accepted on the command line.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/loader, internal/viewer, internal/probe, internal/cli
  - Shared across boundaries.

ERROR HANDLING:
  - Parse helpers return explicit errors for unknown values.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Results are immutable once fetched; never mutate a *SimulationResult.

RELATED FILES:
  - internal/model/cards.go
*/

package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Domain separates fluid results from structural results.
type Domain string

const (
	DomainFluid      Domain = "fluid"
	DomainStructural Domain = "structural"
)

// PrimaryCard is the card a slot shows right after a new result arrives.
func (d Domain) PrimaryCard() Card {
	if d == DomainStructural {
		return CardDisplacement
	}
	return CardVelocity
}

// Cards lists the cards offered for the domain, in display order.
func (d Domain) Cards() []Card {
	if d == DomainStructural {
		return []Card{CardDisplacement, CardStress}
	}
	return []Card{CardVelocity, CardPressure, CardCavitation, CardVortex}
}

// ParseDomain accepts "fluid" or "structural".
func ParseDomain(s string) (Domain, error) {
	switch Domain(strings.ToLower(strings.TrimSpace(s))) {
	case DomainFluid:
		return DomainFluid, nil
	case DomainStructural, "structure":
		return DomainStructural, nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// Condition is one operating condition offered by the backend.
type Condition struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	EffectiveHead float64 `json:"effective_head,omitempty"`
	ActivePower   float64 `json:"active_power,omitempty"`
}

// QueryParams selects a simulation result.
type QueryParams struct {
	EffectiveHead float64 `json:"effective_head"`
	ActivePower   float64 `json:"active_power"`
}

// Values encodes the params as a query string.
func (p QueryParams) Values() url.Values {
	v := url.Values{}
	v.Set("effective_head", strconv.FormatFloat(p.EffectiveHead, 'f', -1, 64))
	v.Set("active_power", strconv.FormatFloat(p.ActivePower, 'f', -1, 64))
	return v
}

func (p QueryParams) String() string {
	return fmt.Sprintf("head=%g power=%g", p.EffectiveHead, p.ActivePower)
}

// SimulationResult is one fetched result. Exactly one of Fluid or Structural is set.
// Identity matters: each fetch yields a new value with a new ID.
type SimulationResult struct {
	ID         string            `json:"id"`
	Domain     Domain            `json:"domain"`
	Params     QueryParams       `json:"params"`
	Fluid      *FluidResult      `json:"fluid,omitempty"`
	Structural *StructuralResult `json:"structural,omitempty"`
}

// MeshJSON returns the base geometry mesh URL of either domain.
func (r *SimulationResult) MeshJSON() string {
	switch {
	case r == nil:
		return ""
	case r.Fluid != nil:
		return r.Fluid.MeshJSON
	case r.Structural != nil:
		return r.Structural.MeshJSON
	}
	return ""
}

type FluidResult struct {
	MeshJSON string       `json:"mesh_json"`
	Velocity VelocityData `json:"velocity"`
	Pressure PressureData `json:"pressure"`
	VOF      VOFData      `json:"vof"`
	Vortex   VortexData   `json:"vortex"`
}

type VelocityData struct {
	H                     string   `json:"h"`
	V                     string   `json:"v"`
	StreamLine            string   `json:"stream_line"`
	VoluteAverageVelocity *float64 `json:"volute_average_velocity,omitempty"`
	Max                   *float64 `json:"max,omitempty"`
}

type PressureData struct {
	H              string   `json:"h"`
	V              string   `json:"v"`
	VolutePressure *float64 `json:"volute_pressure,omitempty"`
	Max            *float64 `json:"max,omitempty"`
}

// VOFData is the cavitation (volume of fluid) section.
type VOFData struct {
	MeshJSON                    string   `json:"mesh_json"`
	VOF                         string   `json:"vof"`
	RunnerCavitationBubbleCount *float64 `json:"runner_cavitation_bubble_count,omitempty"`
	BladeCavitationArea         *float64 `json:"blade_cavitation_area,omitempty"`
}

type VortexData struct {
	Vortex                      string `json:"vortex"`
	VortexConcentrationLocation string `json:"vortex_concentration_location"`
}

type StructuralResult struct {
	MeshJSON   string           `json:"mesh_json"`
	Deplace    DisplacementData `json:"deplace"`
	Contrainte StressData       `json:"contrainte"`
}

type DisplacementData struct {
	Deplace                 string   `json:"deplace"`
	MaxDisplacementLocation string   `json:"max_displacement_location"`
	Max                     *float64 `json:"max,omitempty"`
}

type StressData struct {
	Contrainte        string   `json:"contrainte"`
	MaxStressLocation string   `json:"max_stress_location"`
	Max               *float64 `json:"max,omitempty"`
}

// StrainPoint is one strain-gauge sample covering the four units.
type StrainPoint struct {
	Timestamp  int64   `json:"timestamp"`
	OneUpper   float64 `json:"one_upper"`
	OneDoor    float64 `json:"one_door"`
	TwoCover   float64 `json:"two_cover"`
	TwoDoor    float64 `json:"two_door"`
	ThreeCover float64 `json:"three_cover"`
	ThreeDoor  float64 `json:"three_door"`
	FourCover  float64 `json:"four_cover"`
	FourDoor   float64 `json:"four_door"`
}
