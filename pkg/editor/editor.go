// Package editor implements the dev-mode asset parameter panel.
//
// Selecting a light or the model exposes its fields for text editing. Edits
// arrive as the raw text of an input box: anything that does not parse is
// ignored and the previous value stays, so half-typed input like "-" or "1e"
// never disturbs the scene.
package editor

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/teslashibe/go-synth/pkg/scene"
)

// Field names an editable property.
type Field string

const (
	FieldPosition  Field = "position"
	FieldRotation  Field = "rotation"
	FieldIntensity Field = "intensity"
	FieldColor     Field = "color"
	FieldDistance  Field = "distance"
	FieldDecay     Field = "decay"
)

var (
	// ErrNoSelection is returned when editing with nothing selected.
	ErrNoSelection = errors.New("editor: no asset selected")

	// ErrUnknownField is returned for a field the selected asset does not have.
	ErrUnknownField = errors.New("editor: unknown field for asset")

	// ErrIndex is returned when a vector component index is outside 0..2.
	ErrIndex = errors.New("editor: component index out of range")
)

// Selection is a snapshot of the selected asset's editable values.
type Selection struct {
	Asset     scene.Asset `json:"type"`
	Position  scene.Vec3  `json:"position"`
	Rotation  *scene.Vec3 `json:"rotation,omitempty"`
	Intensity *float64    `json:"intensity,omitempty"`
	Color     string      `json:"color,omitempty"`
	Distance  *float64    `json:"distance,omitempty"`
	Decay     *float64    `json:"decay,omitempty"`
}

// Editor tracks the current selection.
type Editor struct {
	selected scene.Asset
}

// Select makes a the edited asset.
func (e *Editor) Select(a scene.Asset) {
	e.selected = a
}

// Clear drops the selection.
func (e *Editor) Clear() {
	e.selected = ""
}

// Selected returns the selected asset, if any.
func (e *Editor) Selected() (scene.Asset, bool) {
	return e.selected, e.selected != ""
}

// Snapshot returns the selected asset's current values from s.
func (e *Editor) Snapshot(s scene.Scene) (Selection, bool) {
	switch e.selected {
	case scene.AssetModel:
		rot := s.Model.Rotation
		return Selection{Asset: e.selected, Position: s.Model.Position, Rotation: &rot}, true
	case scene.AssetLight, scene.AssetSecondLight:
		l := *s.LightFor(e.selected)
		return Selection{
			Asset:     e.selected,
			Position:  l.Position,
			Intensity: &l.Intensity,
			Color:     l.Color,
			Distance:  &l.Distance,
			Decay:     &l.Decay,
		}, true
	}
	return Selection{}, false
}

// Edit applies the text of an input box to field of the selected asset.
// index picks the vector component for position and rotation.
// It reports whether the scene changed; unparsable text is not an error.
func (e *Editor) Edit(s *scene.Scene, field Field, index int, text string) (bool, error) {
	if e.selected == "" {
		return false, ErrNoSelection
	}

	if e.selected == scene.AssetModel {
		switch field {
		case FieldPosition:
			return setComponent(&s.Model.Position, index, text)
		case FieldRotation:
			return setComponent(&s.Model.Rotation, index, text)
		}
		return false, ErrUnknownField
	}

	l := s.LightFor(e.selected)
	switch field {
	case FieldPosition:
		return setComponent(&l.Position, index, text)
	case FieldIntensity:
		return setNumber(&l.Intensity, text), nil
	case FieldDistance:
		return setNumber(&l.Distance, text), nil
	case FieldDecay:
		return setNumber(&l.Decay, text), nil
	case FieldColor:
		c, err := scene.ParseColor(text)
		if err != nil {
			return false, nil
		}
		l.Color = c
		return true, nil
	}
	return false, ErrUnknownField
}

// EditMoveSpeed applies move speed text. Negative values are ignored.
func EditMoveSpeed(s *scene.Scene, text string) bool {
	v, ok := ParseNumber(text)
	if !ok || v < 0 {
		return false
	}
	s.MoveSpeed = v
	return true
}

// ParseNumber parses input box text as a float.
// Empty input, a lone sign and non-finite values are rejected.
func ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" || text == "+" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func setNumber(dst *float64, text string) bool {
	v, ok := ParseNumber(text)
	if !ok {
		return false
	}
	*dst = v
	return true
}

func setComponent(dst *scene.Vec3, index int, text string) (bool, error) {
	if index < 0 || index > 2 {
		return false, ErrIndex
	}
	return setNumber(&dst[index], text), nil
}
