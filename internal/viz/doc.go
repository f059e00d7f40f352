// Package viz provides the terminal view of a running particle world.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live simulation with mouse pointer and index overlay
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	I     - Cycle the spatial index
//	O     - Show the index structure (quadtree nodes, grid cells, curve order)
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	S     - Save the frame on screen as SVG
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// Holding the left mouse button pulls nearby particles towards the cursor.
//
// # Recording
//
// Recordings are saved to [GIFPath] when recording is toggled off, and
// frames saved with S go to [SVGPath].
package viz
