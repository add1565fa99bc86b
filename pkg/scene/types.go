// Package scene holds the state of the showcase scene: the camera pose, the two
// point lights, the robot model transform and the presets they start from.
//
// The browser renders whatever this package describes. All angles are radians,
// Euler order YXZ, matching the renderer.
package scene

import "math"

// Vec3 is a 3-component vector, encoded as a JSON array.
type Vec3 [3]float64

// V returns a Vec3 from components.
func V(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// X returns the first component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float64 { return v[2] }

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Len returns the Euclidean length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp moves v toward o by fraction t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		Lerp(v[0], o[0], t),
		Lerp(v[1], o[1], t),
		Lerp(v[2], o[2], t),
	}
}

// Lerp performs linear interpolation between two values.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to a range.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Pose is a camera position and Euler rotation.
type Pose struct {
	Position Vec3 `json:"position" yaml:"position"`
	Rotation Vec3 `json:"rotation" yaml:"rotation"`
}

// Light is a point light.
type Light struct {
	Position  Vec3    `json:"position" yaml:"position"`
	Intensity float64 `json:"intensity" yaml:"intensity"`
	Color     string  `json:"color" yaml:"color"`
	Distance  float64 `json:"distance" yaml:"distance"`
	Decay     float64 `json:"decay" yaml:"decay"`
}

// Model is the robot model transform.
type Model struct {
	Position Vec3 `json:"position" yaml:"position"`
	Rotation Vec3 `json:"rotation" yaml:"rotation"`
	Scale    Vec3 `json:"scale" yaml:"scale"`
}

// Asset identifies an editable scene object.
type Asset string

const (
	AssetLight       Asset = "light"
	AssetSecondLight Asset = "secondLight"
	AssetModel       Asset = "model"
)

// ParseAsset validates an asset name.
func ParseAsset(s string) (Asset, bool) {
	switch a := Asset(s); a {
	case AssetLight, AssetSecondLight, AssetModel:
		return a, true
	}
	return "", false
}

// IsLight reports whether the asset is one of the two point lights.
func (a Asset) IsLight() bool {
	return a == AssetLight || a == AssetSecondLight
}
