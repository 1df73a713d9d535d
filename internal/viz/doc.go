// Package viz renders running scenes in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a scene once per frame tick and draws it
//   - [Canvas]: braille pixel canvas, 2x4 dots per cell
//   - [Viewport]: fixed 2D world to canvas mapping for chains
//   - [Camera]: rotating orthographic view of the unit sphere
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	T     - Cycle color themes
//	Arrows - Orbit the sphere camera
//	A / X - Add or remove an electron
//	?     - Show help overlay
package viz
