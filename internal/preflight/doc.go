// Package preflight provides readiness checks for the services and paths the
// board depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll once at startup and logs every failure, so a bad
//     token or unwritable state directory shows up before the first wake.
//   - The CLI "todoink status" command renders the same results as a table.
//
// Network checks are skipped when the caller asks for an offline run.
package preflight
