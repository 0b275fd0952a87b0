// Package display renders a planned frame onto the board.
//
// Driver is the boundary to the panel hardware. The bundled TextDriver draws
// the focus and overview panels as text tables and performs a full refresh by
// atomically replacing its output file (or writing to stdout), which is how a
// host-side e-paper daemon or a terminal preview consumes the frame.
package display
