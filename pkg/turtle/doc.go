// Package turtle compiles turtle graphics into canvas path operations.
//
// The turtle starts at the center of the canvas, pointing up, with the pen
// down. Positive X is to the right and positive Y is up; headings are in
// degrees clockwise from up. Positions are tracked as reals and rounded to
// canvas pixels only when an operation is emitted.
//
//	t := turtle.New(size)
//	for i := 0; i < 4; i++ {
//	    t.Forward(50)
//	    t.Right(90)
//	}
//	session.Render(t.Ops()...)
package turtle
