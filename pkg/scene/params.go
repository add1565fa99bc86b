package scene

import (
	"encoding/json"
	"fmt"
)

// Params is the payload the dev-mode collector copies to the clipboard.
// Paste it into presets to freeze a layout.
type Params struct {
	Camera      Pose        `json:"camera"`
	Light       LightParams `json:"light"`
	SecondLight LightParams `json:"secondLight"`
}

// LightParams is a light without its editor-only fields.
type LightParams struct {
	Position  Vec3    `json:"position"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
	Distance  float64 `json:"distance"`
	Decay     float64 `json:"decay"`
}

// Collect snapshots the camera and both lights.
func Collect(s Scene) Params {
	return Params{
		Camera:      s.Camera,
		Light:       LightParams(s.Light),
		SecondLight: LightParams(s.SecondLight),
	}
}

// Encode renders params as two-space indented JSON.
func (p Params) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("scene: encode params: %w", err)
	}
	return data, nil
}

// DecodeParams parses a payload produced by Encode.
func DecodeParams(data []byte) (Params, error) {
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("scene: decode params: %w", err)
	}
	return p, nil
}

// Apply writes the camera and lights from p into s.
func (p Params) Apply(s *Scene) {
	s.Camera = p.Camera
	s.Light = Light(p.Light)
	s.SecondLight = Light(p.SecondLight)
}
