package components

// Position represents an agent's world position.
type Position struct {
	X, Y float64
}

// Motion holds an agent's heading and scalar speed along it.
// Direction is not normalized; trig callers treat it modulo 2*pi.
type Motion struct {
	Direction float64 // radians
	Velocity  float64 // world units per tick
}
