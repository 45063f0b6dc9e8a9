// Package pickbylight points the operator at the storage bin holding the
// brick of the current step.
//
// A [Storage] maps LED positions on a shelf strip to [Bin]s. When the guide
// shows a step, a [Picker] finds a bin whose bricks match the placement
// (color and footprint in either orientation) and asks its [Signaler] to
// light that position.
//
// [Controller] is the Art-Net implementation: it drives an LED node over
// UDP, one RGB triple per LED in a single DMX universe. Requests go through
// a channel to one worker goroutine started by [Controller.Run], so the
// strip is only ever written from one place. Cancelling the context passed
// to Run turns every LED off.
//
// [NoopSignaler] stands in when no strip is configured.
package pickbylight
