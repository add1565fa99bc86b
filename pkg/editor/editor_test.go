package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-synth/pkg/scene"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{" -0.25 ", -0.25, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEditLight(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	var e Editor
	e.Select(scene.AssetSecondLight)

	applied, err := e.Edit(&s, FieldPosition, 1, "4.5")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 4.5, s.SecondLight.Position[1])

	applied, err = e.Edit(&s, FieldIntensity, 0, "3")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 3.0, s.SecondLight.Intensity)

	applied, err = e.Edit(&s, FieldColor, 0, "#ABCDEF")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "#abcdef", s.SecondLight.Color)

	// The first light is untouched.
	assert.Equal(t, scene.FixedLight(), s.Light)
}

func TestInvalidInputKeepsPreviousValue(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	before := s
	var e Editor
	e.Select(scene.AssetLight)

	for _, text := range []string{"", "-", "x1", "1,5"} {
		applied, err := e.Edit(&s, FieldDistance, 0, text)
		require.NoError(t, err)
		assert.False(t, applied, text)
	}
	applied, err := e.Edit(&s, FieldColor, 0, "blue-ish")
	require.NoError(t, err)
	assert.False(t, applied)

	assert.Equal(t, before, s)
}

func TestEditModel(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	var e Editor
	e.Select(scene.AssetModel)

	applied, err := e.Edit(&s, FieldRotation, 2, "1.57")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1.57, s.Model.Rotation[2])

	_, err = e.Edit(&s, FieldIntensity, 0, "1")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = e.Edit(&s, FieldPosition, 3, "1")
	assert.ErrorIs(t, err, ErrIndex)
}

func TestEditWithoutSelection(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	var e Editor
	_, err := e.Edit(&s, FieldPosition, 0, "1")
	assert.ErrorIs(t, err, ErrNoSelection)

	_, ok := e.Snapshot(s)
	assert.False(t, ok)
}

func TestRotationNotEditableOnLights(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	var e Editor
	e.Select(scene.AssetLight)
	_, err := e.Edit(&s, FieldRotation, 0, "1")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSnapshot(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	var e Editor

	e.Select(scene.AssetLight)
	sel, ok := e.Snapshot(s)
	require.True(t, ok)
	assert.Equal(t, scene.AssetLight, sel.Asset)
	require.NotNil(t, sel.Intensity)
	assert.Equal(t, 2.0, *sel.Intensity)
	assert.Nil(t, sel.Rotation)

	e.Select(scene.AssetModel)
	sel, ok = e.Snapshot(s)
	require.True(t, ok)
	require.NotNil(t, sel.Rotation)
	assert.Nil(t, sel.Intensity)

	e.Clear()
	_, ok = e.Selected()
	assert.False(t, ok)
}

func TestEditMoveSpeed(t *testing.T) {
	s := scene.New(scene.DefaultPresets())
	assert.True(t, EditMoveSpeed(&s, "0.25"))
	assert.Equal(t, 0.25, s.MoveSpeed)

	assert.False(t, EditMoveSpeed(&s, "-1"))
	assert.False(t, EditMoveSpeed(&s, "fast"))
	assert.Equal(t, 0.25, s.MoveSpeed)
}
