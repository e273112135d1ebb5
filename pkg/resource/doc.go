// Package resource models the objects a renderer has to build before they
// can be drawn: images, audio clips, gradients, patterns and text-metric
// requests.
//
// Every resource starts in PendingTransmission. A session moves it to
// TransmissionQueued when its creation command is queued, and the renderer's
// acknowledgements move it on to ProcessedByClient and finally Ready or
// ResourceError:
//
//	pendingTransmission → transmissionQueued → processedByClient → ready | resourceError
//
// Transitions that go backwards are logged and still applied. A resource
// that is not ready yet may be referenced; the session warns and sends the
// command anyway.
package resource
