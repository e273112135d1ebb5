// Package protocol implements the textual wire protocol spoken between the
// server and the browser-hosted canvas renderer.
//
// The protocol trades compactness for debuggability: every frame is plain
// UTF-8 text that can be read straight off a WebSocket inspector.
//
// # Wire Format
//
// A frame is a list of commands joined by the command separator; a command is
// a list of tokens joined by the argument separator. The first token names the
// operation:
//
//	beginPath||moveTo|10|20||lineTo|30|40||stroke
//
// The literal frame "ping" is a keep-alive and carries no commands.
//
// # Outbound Operations
//
// Operations the server sends are modelled as closed sets of Go types, one
// set per category:
//
//   - PathOp: path construction (beginPath, moveTo, arc, clip, ...)
//   - ShapeOp: direct rectangle and text drawing
//   - StyleOp: fill/stroke styles, line width, alpha, cursor, font
//   - TransformOp: setTransform and transform
//   - ResourceOp: image, audio, gradient, pattern and text-metric lifecycle
//   - CanvasOp: canvas resizing
//
// Encode turns any Op into a Command; Parse performs the inverse and is used
// by tests and debugging tools.
//
// # Inbound Events
//
// The renderer reports input, resize and resource status back to the server.
// SplitFrame breaks an inbound frame into RawEvents and DecodeEvent turns each
// into a typed Event. A malformed piece yields a *DecodeError and never
// affects its neighbours.
//
// # Numbers
//
// The renderer is JavaScript, so integers may arrive as "12.5" or "1e3".
// Integer arguments are parsed as floating point and truncated toward zero
// rather than rejected.
package protocol
