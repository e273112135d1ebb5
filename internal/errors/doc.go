// Package errors provides structured, actionable error messages for the
// rcanvas command and its configuration.
//
// Each error has a registered code (e.g., "E122") that maps to a short
// message, a longer explanation and a category. Callers add a detail and a
// suggestion for the situation at hand:
//
//	err := errors.New("E122").
//	    WithDetail("port 70000 is out of range").
//	    WithSuggestion("Use a port between 1 and 65535")
//
//	errors.PrintError(err)
//	// Output:
//	//
//	// ERROR E122: Invalid port number
//	//
//	//   port 70000 is out of range
//	//
//	//   Hint: Use a port between 1 and 65535
//
// Errors from this package wrap their cause, so errors.Is and errors.As from
// the standard library see through them.
package errors
