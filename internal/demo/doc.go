// Package demo contains the sample painters served by "rcanvas serve".
//
// Each painter is registered under a short name:
//
//	bounce  a ball bouncing inside the canvas; clicks change its color
//	sketch  freehand drawing with the mouse; any key clears the canvas
//	spiral  a turtle-graphics spiral; clicks change its turning angle
package demo
