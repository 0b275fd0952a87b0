// Package todoist fetches projects, sections, and active tasks from the
// Todoist REST API and resolves the configured focus project and section
// names to identifiers.
//
// Every request carries the bearer token through an oauth2 transport and is
// paced by a token-bucket limiter. Failures are classified with the markers in
// internal/services: 401/403 map to ErrAuth, transport failures, 429 and 5xx
// map to ErrNetwork, and bodies that cannot be decoded map to ErrParse. A
// request that fails with ErrNetwork is retried once after a backoff.
//
// Both the REST v2 array responses and the cursor-paginated envelope
// ({"results": [...], "next_cursor": "..."}) of the unified API are accepted.
package todoist
