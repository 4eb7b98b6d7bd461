// Package vehicles exposes a read-only HTTP view of the fleet.
package vehicles
