package model

import "math"

// Position is a point in the plane at a given time in milliseconds.
type Position struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
}

// State is the kinematic state of a vehicle as returned by getPosition.
type State struct {
	Position
	Heading float64 `json:"heading"` // radians, unbounded
	Speed   float64 `json:"speed"`   // distance units per second, may be negative
}

// Report is the message a vehicle sends to its manager and the manager
// relays to every observer.
type Report struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
}

// NewReport builds a report for vehicle id from its current state.
func NewReport(id string, st State) Report {
	return Report{
		ID:        id,
		X:         st.X,
		Y:         st.Y,
		Timestamp: st.Timestamp,
		Speed:     st.Speed,
		Heading:   st.Heading,
	}
}

// Valid reports whether the report carries an id and finite coordinates.
func (r Report) Valid() bool {
	if r.ID == "" {
		return false
	}
	for _, f := range []float64{r.X, r.Y, r.Speed, r.Heading} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
