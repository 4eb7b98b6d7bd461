// Package infra contains technical adapters: the WebSocket observer
// gateway, the MQTT bridge, logging and metrics exporters. These packages
// depend only on the interfaces and types defined in the core packages.
package infra
