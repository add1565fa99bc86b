package scene

// Preset names for the configurations the viewer can start from.
const (
	PresetFixed = "fixed"
	PresetDev   = "dev"
)

// DefaultMoveSpeed is the dev-mode camera speed ceiling.
const DefaultMoveSpeed = 0.1

// FixedCamera returns the presentation-mode camera pose.
// Captured with the dev-mode collector and pasted here.
func FixedCamera() Pose {
	return Pose{
		Position: V(0.34910332419795015, 1.9000000000000035, 0.7866617532576897),
		Rotation: V(-0.06499999999999988, -0.16000000000000245, 1.5650840187446283e-17),
	}
}

// DevCamera returns the starting pose for manual camera work.
func DevCamera() Pose {
	return Pose{
		Position: V(0, 3, 2),
		Rotation: V(0, 0, 0),
	}
}

// FixedLight returns the key light used in presentation mode.
func FixedLight() Light {
	return Light{
		Position:  V(0, 2, 1),
		Intensity: 2,
		Color:     "#ffffff",
		Distance:  1.3,
		Decay:     2,
	}
}

// FixedSecondLight returns the violet rim light used in presentation mode.
func FixedSecondLight() Light {
	return Light{
		Position:  V(0, 2.9, -0.6),
		Intensity: 2.5,
		Color:     "#908aea",
		Distance:  1.8,
		Decay:     2.2,
	}
}

// DevLight returns a neutral, wide light for dev-mode editing.
func DevLight() Light {
	return Light{
		Position:  V(0, 2, 0),
		Intensity: 1,
		Color:     "#ffffff",
		Distance:  10,
		Decay:     2,
	}
}

// DefaultModel returns the identity model transform.
func DefaultModel() Model {
	return Model{
		Position: V(0, 0, 0),
		Rotation: V(0, 0, 0),
		Scale:    V(1, 1, 1),
	}
}

// Presets holds the starting values of a scene.
type Presets struct {
	Camera      Pose    `yaml:"camera"`
	DevCamera   Pose    `yaml:"dev_camera"`
	MoveSpeed   float64 `yaml:"move_speed"`
	Light       Light   `yaml:"light"`
	SecondLight Light   `yaml:"second_light"`
	Model       Model   `yaml:"model"`
}

// DefaultPresets returns the presentation presets.
func DefaultPresets() Presets {
	return Presets{
		Camera:      FixedCamera(),
		DevCamera:   DevCamera(),
		MoveSpeed:   DefaultMoveSpeed,
		Light:       FixedLight(),
		SecondLight: FixedSecondLight(),
		Model:       DefaultModel(),
	}
}

// DevPresets returns presets for lighting work: the key light is swapped for
// the wide dev light. The presentation camera stays the reset target.
func DevPresets() Presets {
	p := DefaultPresets()
	p.Light = DevLight()
	return p
}

// GetPreset returns presets by name, or false if not found.
func GetPreset(name string) (Presets, bool) {
	switch name {
	case PresetFixed, "":
		return DefaultPresets(), true
	case PresetDev:
		return DevPresets(), true
	}
	return Presets{}, false
}
