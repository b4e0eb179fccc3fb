package system

// ColorStop is one entry of a body's radial color ramp.
type ColorStop struct {
	Offset float64 `yaml:"offset" mapstructure:"offset"`
	Color  string  `yaml:"color" mapstructure:"color"`
}

// AtmosphereSpec is a translucent ring around the body.
type AtmosphereSpec struct {
	Color string  `yaml:"color" mapstructure:"color"`
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
	Width float64 `yaml:"width" mapstructure:"width"` // added to the body radius
}

// CloudSpec scatters translucent blobs over the surface, re-rolled every frame.
type CloudSpec struct {
	Count int     `yaml:"count" mapstructure:"count"`
	Color string  `yaml:"color" mapstructure:"color"`
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
}

// BandSpec paints horizontal stripes that turn with the body's spin.
type BandSpec struct {
	Count int     `yaml:"count" mapstructure:"count"`
	Color string  `yaml:"color" mapstructure:"color"`
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
}

// SpotSpec is a fixed accent ellipse on the surface. Geometry is in
// fractions of the body radius.
type SpotSpec struct {
	Color string  `yaml:"color" mapstructure:"color"`
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
	X     float64 `yaml:"x" mapstructure:"x"`
	Y     float64 `yaml:"y" mapstructure:"y"`
	RX    float64 `yaml:"rx" mapstructure:"rx"`
	RY    float64 `yaml:"ry" mapstructure:"ry"`
}

// RingSpec draws concentric tilted ellipses with decreasing opacity. Radii are
// multiples of the body radius.
type RingSpec struct {
	Count   int     `yaml:"count" mapstructure:"count"`
	Color   string  `yaml:"color" mapstructure:"color"`
	Alpha   float64 `yaml:"alpha" mapstructure:"alpha"`
	Inner   float64 `yaml:"inner" mapstructure:"inner"`
	Outer   float64 `yaml:"outer" mapstructure:"outer"`
	Flatten float64 `yaml:"flatten" mapstructure:"flatten"` // minor/major ratio
	Angle   float64 `yaml:"angle" mapstructure:"angle"`     // radians
	Width   float64 `yaml:"width" mapstructure:"width"`
}

// Features is the declarative set of decorations a body carries. The renderer
// consumes it generically; nothing branches on a body's name.
type Features struct {
	Atmosphere *AtmosphereSpec `yaml:"atmosphere,omitempty" mapstructure:"atmosphere"`
	Clouds     *CloudSpec      `yaml:"clouds,omitempty" mapstructure:"clouds"`
	Bands      *BandSpec       `yaml:"bands,omitempty" mapstructure:"bands"`
	Spot       *SpotSpec       `yaml:"spot,omitempty" mapstructure:"spot"`
	Rings      *RingSpec       `yaml:"rings,omitempty" mapstructure:"rings"`
}

// MoonSpec describes a planet's single satellite.
type MoonSpec struct {
	Radius   float64     `yaml:"radius" mapstructure:"radius"`
	Distance float64     `yaml:"distance" mapstructure:"distance"`
	Speed    float64     `yaml:"speed" mapstructure:"speed"`
	Colors   []ColorStop `yaml:"colors" mapstructure:"colors"`
}

// PlanetSpec describes one planet.
//
// Eccentricity selects focus mode (sun at a focus). SemiMinorAxis selects the
// simplified centered ellipse; setting both is an error. Period, when set,
// replaces the magnitude of Speed and the sign of Speed gives the direction.
type PlanetSpec struct {
	Name          string      `yaml:"name" mapstructure:"name"`
	Radius        float64     `yaml:"radius" mapstructure:"radius"`
	SemiMajorAxis float64     `yaml:"a" mapstructure:"a"`
	SemiMinorAxis float64     `yaml:"b" mapstructure:"b"`
	Eccentricity  float64     `yaml:"e" mapstructure:"e"`
	Speed         float64     `yaml:"speed" mapstructure:"speed"`   // radians per tick
	Period        float64     `yaml:"period" mapstructure:"period"` // ticks per revolution
	StartAngle    *float64    `yaml:"start_angle,omitempty" mapstructure:"start_angle"`
	SpinRate      float64     `yaml:"spin_rate" mapstructure:"spin_rate"`
	Colors        []ColorStop `yaml:"colors" mapstructure:"colors"`
	LabelColor    string      `yaml:"label_color" mapstructure:"label_color"`
	Features      Features    `yaml:"features" mapstructure:"features"`
	Moon          *MoonSpec   `yaml:"moon,omitempty" mapstructure:"moon"`
}

// SunSpec describes the central star.
type SunSpec struct {
	Radius       float64     `yaml:"radius" mapstructure:"radius"`
	Colors       []ColorStop `yaml:"colors" mapstructure:"colors"`
	GlowScale    float64     `yaml:"glow_scale" mapstructure:"glow_scale"` // outer glow radius / body radius
	GlowColor    string      `yaml:"glow_color" mapstructure:"glow_color"`
	GlowAlpha    float64     `yaml:"glow_alpha" mapstructure:"glow_alpha"`
	TextureBlobs int         `yaml:"texture_blobs" mapstructure:"texture_blobs"`
	TextureColor string      `yaml:"texture_color" mapstructure:"texture_color"`
}

// BeltSpec describes the asteroid belt. Speeds follow Kepler's third law
// scaled from the reference distance and speed.
type BeltSpec struct {
	Count             int     `yaml:"count" mapstructure:"count"`
	MinDistance       float64 `yaml:"min_distance" mapstructure:"min_distance"`
	MaxDistance       float64 `yaml:"max_distance" mapstructure:"max_distance"`
	MinRadius         float64 `yaml:"min_radius" mapstructure:"min_radius"`
	MaxRadius         float64 `yaml:"max_radius" mapstructure:"max_radius"`
	ReferenceDistance float64 `yaml:"reference_distance" mapstructure:"reference_distance"`
	ReferenceSpeed    float64 `yaml:"reference_speed" mapstructure:"reference_speed"`
	MinBrightness     float64 `yaml:"min_brightness" mapstructure:"min_brightness"`
	Color             string  `yaml:"color" mapstructure:"color"`
}

// StarfieldSpec describes the twinkling background.
type StarfieldSpec struct {
	Count        int     `yaml:"count" mapstructure:"count"`
	MaxRadius    float64 `yaml:"max_radius" mapstructure:"max_radius"`
	MinBlink     float64 `yaml:"min_blink" mapstructure:"min_blink"`
	MaxBlink     float64 `yaml:"max_blink" mapstructure:"max_blink"`
	OpacityFloor float64 `yaml:"opacity_floor" mapstructure:"opacity_floor"`
}

// Config is the full body descriptor set.
type Config struct {
	Sun       SunSpec       `yaml:"sun" mapstructure:"sun"`
	Planets   []PlanetSpec  `yaml:"planets" mapstructure:"planets"`
	Asteroids BeltSpec      `yaml:"asteroids" mapstructure:"asteroids"`
	Stars     StarfieldSpec `yaml:"stars" mapstructure:"stars"`
}
