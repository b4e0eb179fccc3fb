package system

import "math"

func stops(pairs ...any) []ColorStop {
	out := make([]ColorStop, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ColorStop{Offset: pairs[i].(float64), Color: pairs[i+1].(string)})
	}
	return out
}

// DefaultConfig returns the stock eight-planet system.
func DefaultConfig() Config {
	return Config{
		Sun: SunSpec{
			Radius:       50,
			Colors:       stops(0.0, "#fff9a3", 0.3, "#fff176", 0.6, "#ffd54f", 0.8, "#ffb300", 1.0, "#ffa000"),
			GlowScale:    1.6,
			GlowColor:    "#ffb300",
			GlowAlpha:    0.35,
			TextureBlobs: 5,
			TextureColor: "#ff8f00",
		},
		Planets: []PlanetSpec{
			{
				Name: "Mercury", Radius: 5, SemiMajorAxis: 70, Eccentricity: 0.2056, Speed: 0.047, SpinRate: 0.01,
				Colors: stops(0.0, "#e0e0e0", 1.0, "#7a7a7a"),
			},
			{
				Name: "Venus", Radius: 12, SemiMajorAxis: 100, Eccentricity: 0.0068, Speed: 0.035, SpinRate: -0.004,
				Colors: stops(0.0, "#fff5e6", 1.0, "#d4b58c"),
				Features: Features{
					Atmosphere: &AtmosphereSpec{Color: "#ffdfba", Alpha: 0.25, Width: 3},
				},
			},
			{
				Name: "Earth", Radius: 13, SemiMajorAxis: 140, Eccentricity: 0.0167, Speed: 0.03, SpinRate: 0.01,
				Colors: stops(0.0, "#6ec1ff", 0.7, "#2e86c1", 1.0, "#133f73"),
				Features: Features{
					Atmosphere: &AtmosphereSpec{Color: "#87ceeb", Alpha: 0.3, Width: 3},
					Clouds:     &CloudSpec{Count: 3, Color: "#ffffff", Alpha: 0.3},
				},
				Moon: &MoonSpec{
					Radius: 4, Distance: 20, Speed: 0.05,
					Colors: stops(0.0, "#dddddd", 1.0, "#888888"),
				},
			},
			{
				Name: "Mars", Radius: 8, SemiMajorAxis: 180, Eccentricity: 0.0934, Speed: 0.024, SpinRate: 0.01,
				Colors: stops(0.0, "#ff7f50", 1.0, "#b03d1d"),
			},
			{
				Name: "Jupiter", Radius: 25, SemiMajorAxis: 230, Eccentricity: 0.0489, Speed: 0.013, SpinRate: 0.01,
				Colors: stops(0.0, "#ffe0b2", 1.0, "#b07250"),
				Features: Features{
					Bands: &BandSpec{Count: 4, Color: "#a0643c", Alpha: 0.35},
					Spot:  &SpotSpec{Color: "#c1440e", Alpha: 0.8, X: 0.3, Y: 0.35, RX: 0.28, RY: 0.16},
				},
			},
			{
				Name: "Saturn", Radius: 22, SemiMajorAxis: 280, Eccentricity: 0.0565, Speed: 0.009, SpinRate: 0.01,
				Colors: stops(0.0, "#fff8c4", 1.0, "#d4c08c"),
				Features: Features{
					Bands: &BandSpec{Count: 3, Color: "#c8b478", Alpha: 0.2},
					Rings: &RingSpec{
						Count: 3, Color: "#c8b478", Alpha: 0.6,
						Inner: 1.4, Outer: 1.9, Flatten: 0.32, Angle: math.Pi / 4, Width: 3,
					},
				},
			},
			{
				Name: "Uranus", Radius: 18, SemiMajorAxis: 330, Eccentricity: 0.046, Speed: 0.006, SpinRate: 0.01,
				Colors: stops(0.0, "#b0f0ff", 1.0, "#4da3cc"),
			},
			{
				Name: "Neptune", Radius: 17, SemiMajorAxis: 380, Eccentricity: 0.009, Speed: 0.005, SpinRate: 0.01,
				Colors: stops(0.0, "#66a3ff", 1.0, "#1c3fa0"),
			},
		},
		Asteroids: BeltSpec{
			Count:             100,
			MinDistance:       200,
			MaxDistance:       215,
			MinRadius:         1,
			MaxRadius:         3,
			ReferenceDistance: 207,
			ReferenceSpeed:    0.0035,
			MinBrightness:     0.5,
			Color:             "#aaaaaa",
		},
		Stars: StarfieldSpec{
			Count:        200,
			MaxRadius:    1.5,
			MinBlink:     0.01,
			MaxBlink:     0.03,
			OpacityFloor: 0,
		},
	}
}
