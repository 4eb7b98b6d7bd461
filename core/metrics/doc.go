// Package metrics defines the Recorder interface the fleet manager reports
// its activity to: received positions, observer deliveries and prunes,
// proxied commands and fleet size. Implementations live in infra/metrics and
// are instantiated by type name from configuration; several configured
// recorders are combined with a MultiRecorder.
package metrics
