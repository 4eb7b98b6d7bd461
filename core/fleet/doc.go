// Package fleet implements the manager at the root of the vehicle star
// topology. The manager creates vehicles from a shared template, keeps the
// set of observers interested in position updates, relays every report it
// receives to all observers and forwards observer commands to vehicles.
//
// Observer membership heals itself: an observer whose delivery fails is
// removed during the broadcast that failed and must register again to
// receive further updates. Commands are fire-and-forget; failures are logged
// with the vehicle id and never returned to the issuer.
package fleet
