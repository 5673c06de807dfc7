// Package viz draws a running cloth in the terminal.
//
// The monitor is a Bubble Tea program:
//
//   - [Monitor]: steps a cloth in real time and renders it as a wireframe
//   - [Menu]: preset picker that hands over to a Monitor
//   - [Canvas]: Braille-based dot canvas the wireframe is drawn on
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single frame while paused
//	R     - Rebuild the cloth with the tuned parameters
//	Tab   - Select a parameter, Up/Down to tune it
//	[ ]   - Replay recent history
//	X Y   - Rotate the camera, + - to zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
