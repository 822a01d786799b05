package model

import "fmt"

// SummaryItem is one label/value row on an info card.
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CardSummary is the info card shown next to the viewport.
type CardSummary struct {
	Card  Card          `json:"card"`
	Items []SummaryItem `json:"items"`
}

// FormatValue renders a number with two decimals; nil renders as "".
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func withUnit(v *float64, format, empty string) string {
	if v == nil || *v == 0 {
		return empty
	}
	return fmt.Sprintf(format, *v)
}

// CardSummaries builds the info cards for a result, in display order.
// A nil result yields the cards with empty values.
func CardSummaries(r *SimulationResult) []CardSummary {
	if r != nil && r.Domain == DomainStructural {
		s := r.Structural
		if s == nil {
			s = &StructuralResult{}
		}
		return structuralSummaries(s)
	}
	f := &FluidResult{}
	if r != nil && r.Fluid != nil {
		f = r.Fluid
	}
	return []CardSummary{
		{Card: CardVelocity, Items: []SummaryItem{
			{Label: "最大速度", Value: withUnit(f.Velocity.Max, "%.2f m/s", "")},
			{Label: "蜗壳出口平均速度", Value: withUnit(f.Velocity.VoluteAverageVelocity, "%.2fm/s", " ")},
		}},
		{Card: CardPressure, Items: []SummaryItem{
			{Label: "最大压力", Value: withUnit(f.Pressure.Max, "%.2f  MPa", "")},
			{Label: "蜗壳出口压力", Value: withUnit(f.Pressure.VolutePressure, "%.2f MPa", "")},
		}},
		{Card: CardCavitation, Items: []SummaryItem{
			{Label: "转轮空化数", Value: FormatValue(f.VOF.RunnerCavitationBubbleCount)},
			{Label: "叶片空化面积", Value: withUnit(f.VOF.BladeCavitationArea, "%.2f m²", "")},
		}},
		{Card: CardVortex, Items: []SummaryItem{
			{Label: "集中部位", Value: f.Vortex.VortexConcentrationLocation},
		}},
	}
}

func structuralSummaries(s *StructuralResult) []CardSummary {
	orDash := func(v string) string {
		if v == "" {
			return "--"
		}
		return v
	}
	return []CardSummary{
		{Card: CardDisplacement, Items: []SummaryItem{
			{Label: "最大位移", Value: withUnit(s.Deplace.Max, "%.4f mm", "--")},
			{Label: "出现部位", Value: orDash(s.Deplace.MaxDisplacementLocation)},
		}},
		{Card: CardStress, Items: []SummaryItem{
			{Label: "最大应力", Value: withUnit(s.Contrainte.Max, "%.2f MPa", "--")},
			{Label: "出现部位", Value: orDash(s.Contrainte.MaxStressLocation)},
		}},
	}
}
