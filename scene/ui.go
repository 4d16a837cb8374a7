package scene

import (
	"fmt"
	"strconv"
	"strings"

	"scene-renderer/math"
)

// UIUnit says how a UIMeasure maps to normalized device coordinates.
type UIUnit int

const (
	// UnitScreen values are NDC lengths; the screen is 2 wide.
	UnitScreen UIUnit = iota
	// UnitPercent values are percentages of the screen.
	UnitPercent
)

type UIMeasure struct {
	Value float32
	Unit  UIUnit
}

func Screen(v float32) UIMeasure { return UIMeasure{v, UnitScreen} }
func Percent(v float32) UIMeasure { return UIMeasure{v, UnitPercent} }

// ParseUIMeasure reads "0.25", "0.25sc" or "5%".
func ParseUIMeasure(s string) (UIMeasure, error) {
	s = strings.TrimSpace(s)
	unit := UnitScreen
	switch {
	case strings.HasSuffix(s, "%"):
		unit = UnitPercent
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "sc"):
		s = strings.TrimSuffix(s, "sc")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return UIMeasure{}, fmt.Errorf("ui measure %q: %w", s, err)
	}
	return UIMeasure{float32(v), unit}, nil
}

// ndc converts to NDC length.
func (m UIMeasure) ndc() float32 {
	if m.Unit == UnitPercent {
		return m.Value / 50
	}
	return m.Value
}

type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCentre
	AlignRight
)

type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// UILayout places a unit quad on screen. Offsets are measured inwards from
// the aligned edge.
type UILayout struct {
	HOffset, VOffset UIMeasure
	Width, Height    UIMeasure
	HAlign           HAlign
	VAlign           VAlign
}

// DefaultUILayout is a quarter-screen panel in the top-left corner.
func DefaultUILayout() UILayout {
	return UILayout{
		HOffset: Percent(0),
		VOffset: Percent(0),
		Width:   Percent(50),
		Height:  Percent(50),
		HAlign:  AlignLeft,
		VAlign:  AlignTop,
	}
}

// anchor returns the pre-scale translation, post-scale translation and
// offset sign for one axis.
func (a HAlign) anchor() (pre, post, sign float32) {
	switch a {
	case AlignLeft:
		return -1, .5, 1
	case AlignRight:
		return 1, -.5, -1
	}
	return 0, 0, 1
}

func (a VAlign) anchor() (pre, post, sign float32) {
	switch a {
	case AlignTop:
		return 1, -.5, -1
	case AlignBottom:
		return -1, .5, 1
	}
	return 0, 0, 1
}

// Pose builds the overlay matrix: offset, edge anchor, size, then shift the
// quad so its edge rather than its centre sits on the anchor.
func (l UILayout) Pose() math.Mat4 {
	hPre, hPost, hSign := l.HAlign.anchor()
	vPre, vPost, vSign := l.VAlign.anchor()

	m := math.Mat4Identity()
	m.TranslateInPlace(math.NewVec3(hSign*l.HOffset.ndc(), vSign*l.VOffset.ndc(), 0))
	m.TranslateInPlace(math.NewVec3(hPre, vPre, 0))
	m.ScaleInPlace(math.NewVec3(l.Width.ndc(), l.Height.ndc(), 1))
	m.TranslateInPlace(math.NewVec3(hPost, vPost, 0))
	return m
}

// NewUIEntity places model according to l. Draw it with the renderer's UI
// entities so it ignores the camera.
func NewUIEntity(model ModelID, l UILayout) *Entity {
	e := NewEntity(model)
	e.matrix = l.Pose()
	return e
}
