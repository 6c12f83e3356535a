package components

// RGB is a display color. Heritable, not behaviorally significant.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Traits holds the heritable sensing and display properties of an agent.
type Traits struct {
	Color       RGB
	FOVAngle    float64 // full cone angle in radians; >= 2*pi sees all around
	FOVDistance float64
}
