// Package cycle runs one wake cycle of the board:
//
//	Wake -> TimeSyncing -> Fetching -> Resolving (when needed) -> Planning -> Rendering -> Sleeping
//
// A time sync failure only marks the frame stale. A fetch or resolution
// failure skips rendering so the panel keeps its previous image, and the
// persisted focus ids are left untouched. Every path ends in Sleeping, which
// saves changed state, records the cycle, and computes the next wake time.
//
// Collaborators are interfaces so the controller can be driven by fakes in
// tests and by the real clients in the daemon.
package cycle
