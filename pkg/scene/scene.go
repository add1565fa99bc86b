package scene

// Scene is the mutable state the page renders.
// It is a plain value; the viewer guards it with its own lock.
type Scene struct {
	Camera      Pose    `json:"camera"`
	Light       Light   `json:"light"`
	SecondLight Light   `json:"secondLight"`
	Model       Model   `json:"model"`
	MoveSpeed   float64 `json:"moveSpeed"`
}

// New builds a scene from presets.
func New(p Presets) Scene {
	return Scene{
		Camera:      p.Camera,
		Light:       p.Light,
		SecondLight: p.SecondLight,
		Model:       p.Model,
		MoveSpeed:   p.MoveSpeed,
	}
}

// LightFor returns a pointer to the light named by asset, or nil.
func (s *Scene) LightFor(a Asset) *Light {
	switch a {
	case AssetLight:
		return &s.Light
	case AssetSecondLight:
		return &s.SecondLight
	}
	return nil
}

// Bookmark holds one saved camera pose.
type Bookmark struct {
	pose  Pose
	saved bool
}

// Save stores a copy of p.
func (b *Bookmark) Save(p Pose) {
	b.pose = p
	b.saved = true
}

// Saved returns the stored pose, or false if nothing was saved yet.
func (b *Bookmark) Saved() (Pose, bool) {
	return b.pose, b.saved
}
