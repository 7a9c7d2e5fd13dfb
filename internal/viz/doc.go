// Package viz draws a running world in the terminal.
//
// [Model] is a Bubble Tea model that steps a [sim.World] on every tick and
// renders tight or fat boxes with candidate pairs on a braille [Canvas],
// either as a front projection or through an orbiting 3D [Camera].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Single step while paused
//	R     - Reset the world
//	F     - Toggle fat/tight boxes
//	P     - Toggle candidate pair lines
//	M     - Front view / 3D view
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// G starts recording the canvas; pressing it again writes broadphase.gif
// to the current directory.
package viz
