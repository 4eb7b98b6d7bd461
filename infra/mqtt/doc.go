// Package mqtt bridges the fleet manager onto an MQTT broker using Eclipse
// Paho. Vehicles publish reports on <prefix>/manager/position, observers
// register on <prefix>/manager/register and receive reports on
// <prefix>/observer/<name>/position.
package mqtt
