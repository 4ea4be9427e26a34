// Package viz is the terminal front-end of the sandbox.
//
// The scene is drawn on a braille [surface.Canvas]: each terminal cell holds
// 2x4 world units, so mouse cells map to the centre of their dot block.
//
// # Key Bindings
//
//	LMB   - Drag a ball
//	RMB   - Toggle ball info
//	F1    - Toggle help
//	F2    - Toggle system info
//	F3    - Reset
//	Space - Pause/Resume
//	S     - Save snapshot
//	G     - Toggle GIF recording
//	T     - Cycle themes
//	Q     - Save and quit
package viz
