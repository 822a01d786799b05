package model

import (
	"fmt"
	"strings"
)

// Card names the physical field being visualized.
type Card string

const (
	CardVelocity     Card = "速度场"
	CardPressure     Card = "压力场"
	CardCavitation   Card = "空化分布"
	CardVortex       Card = "涡带分布"
	CardDisplacement Card = "位移场"
	CardStress       Card = "应力场"
)

var cardAliases = map[string]Card{
	"velocity":     CardVelocity,
	"pressure":     CardPressure,
	"cavitation":   CardCavitation,
	"vortex":       CardVortex,
	"displacement": CardDisplacement,
	"stress":       CardStress,
}

// Domain reports which result domain the card belongs to.
func (c Card) Domain() Domain {
	switch c {
	case CardDisplacement, CardStress:
		return DomainStructural
	}
	return DomainFluid
}

func (c Card) Valid() bool {
	for _, known := range cardAliases {
		if c == known {
			return true
		}
	}
	return false
}

// Attribute is the vertex attribute carrying the card's field values.
func (c Card) Attribute() string {
	switch c {
	case CardPressure, CardVortex:
		return "total_pressure"
	case CardCavitation:
		return "phase_1_vof"
	case CardDisplacement:
		return "resu____DEPL"
	case CardStress:
		return "resu____SIEQ_NOEU"
	}
	return "velocity"
}

// Unit is the display unit used by the probe.
func (c Card) Unit() string {
	switch c {
	case CardVelocity:
		return "m/s"
	case CardPressure, CardVortex:
		return "Pa"
	case CardDisplacement:
		return "mm"
	case CardStress:
		return "MPa"
	}
	return ""
}

// Label is the short name of the quantity, e.g. "速度" for "速度场".
func (c Card) Label() string {
	return strings.ReplaceAll(strings.ReplaceAll(string(c), "分布", ""), "场", "")
}

// ParseCard accepts the card label or its English alias.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if c, ok := cardAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	if c := Card(s); c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown card %q", s)
}

// Button is the view style for the active card.
type Button string

const (
	ButtonNone       Button = ""
	ButtonGeometry   Button = "几何"
	ButtonProfile    Button = "剖面"
	ButtonStreamline Button = "流线"
	// ButtonReset resets the camera. It is never stored in a Mode.
	ButtonReset Button = "复位"
)

var buttonAliases = map[string]Button{
	"":           ButtonNone,
	"none":       ButtonNone,
	"geometry":   ButtonGeometry,
	"profile":    ButtonProfile,
	"streamline": ButtonStreamline,
	"reset":      ButtonReset,
}

// ParseButton accepts the button label or its English alias.
func ParseButton(s string) (Button, error) {
	s = strings.TrimSpace(s)
	if b, ok := buttonAliases[strings.ToLower(s)]; ok {
		return b, nil
	}
	for _, b := range buttonAliases {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown button %q", s)
}

// ButtonsFor lists the buttons offered for a card, reset first.
func ButtonsFor(c Card) []Button {
	switch c {
	case CardVelocity:
		return []Button{ButtonReset, ButtonGeometry, ButtonProfile, ButtonStreamline}
	case CardCavitation, CardVortex:
		return []Button{ButtonReset, ButtonGeometry}
	}
	return []Button{ButtonReset, ButtonGeometry, ButtonProfile}
}

// ButtonAvailable reports whether b can be pressed while c is active.
// ButtonNone is always available.
func ButtonAvailable(c Card, b Button) bool {
	if b == ButtonNone {
		return true
	}
	for _, offered := range ButtonsFor(c) {
		if offered == b {
			return true
		}
	}
	return false
}

// Profile selects the slice orientation of a profile view.
type Profile string

const (
	ProfileHorizontal Profile = "h"
	ProfileVertical   Profile = "v"
)

func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal", "":
		return ProfileHorizontal, nil
	case "v", "vertical":
		return ProfileVertical, nil
	}
	return "", fmt.Errorf("unknown profile orientation %q", s)
}

// Mode is the visualization mode of a slot.
type Mode struct {
	Card    Card    `json:"card"`
	Button  Button  `json:"button"`
	Profile Profile `json:"profile"`
}

// DefaultMode is primary card, no button, horizontal profile.
func DefaultMode(d Domain) Mode {
	return Mode{Card: d.PrimaryCard(), Button: ButtonNone, Profile: ProfileHorizontal}
}

func (m Mode) String() string {
	b := string(m.Button)
	if b == "" {
		b = "-"
	}
	if m.Button == ButtonProfile {
		return fmt.Sprintf("%s/%s/%s", m.Card, b, m.Profile)
	}
	return fmt.Sprintf("%s/%s", m.Card, b)
}
