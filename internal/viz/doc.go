// Package viz renders beam phase space in the terminal.
//
// The package implements a live turn-by-turn view using the Bubble Tea
// framework:
//
//   - [Model]: interactive tracking session with a survival sparkline
//   - [Canvas]: Braille-based dot canvas for phase-space scatters
//   - [PhasePlot]: one-shot scatter of a bunch projection
//
// # Key Bindings
//
//	Space - Pause/Resume tracking
//	S     - Single turn while paused
//	R     - Reset to the initial bunch
//	Tab   - Cycle phase-space planes
//	Q     - Quit
package viz
