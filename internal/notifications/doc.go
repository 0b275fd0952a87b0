// Package notifications pushes board alerts to ntfy.
//
// Only failures a person must fix are announced: an invalid API token or a
// focus project/section that no longer exists. A matching recovery message is
// sent once the board renders again. When no topic is configured the service
// is a no-op, so the wake cycle depends only on the Service interface.
package notifications
