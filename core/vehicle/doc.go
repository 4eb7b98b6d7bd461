// Package vehicle implements a simulated point-mass vehicle. A vehicle keeps
// its last known position together with heading and speed and extrapolates
// its current position on demand, assuming constant heading and speed since
// the last update. Heading and speed changes first advance the position with
// the previous values, then report the new state to the manager immediately.
// An optional reporter sends the position to the manager at a fixed interval.
package vehicle
