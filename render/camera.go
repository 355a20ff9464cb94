// Package render draws a staffclimb scene with ebiten and translates ebiten
// input into scene input.
package render

import (
	"github.com/go-gl/mathgl/mgl64"
)

// groundMargin is how much of the screen, in meters, lies below the ground.
const groundMargin = 1.0

// Camera maps world meters (y up) to screen pixels (y down). The arena is
// centred horizontally and the ground sits groundMargin above the bottom edge.
type Camera struct {
	Width, Height int

	arenaWidth float64
	viewHeight float64
	scale      float64
	toScreen   mgl64.Mat3
	toWorld    mgl64.Mat3
}

// NewCamera returns a camera showing viewHeight meters vertically on a
// width x height screen.
func NewCamera(width, height int, arenaWidth, viewHeight float64) Camera {
	c := Camera{arenaWidth: arenaWidth, viewHeight: viewHeight}
	c.Resize(width, height)
	return c
}

// Resize recomputes the transform for a new screen size.
func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = width, height
	c.scale = float64(height) / c.viewHeight

	c.toScreen = mgl64.Translate2D(float64(width)/2, float64(height)-groundMargin*c.scale).
		Mul3(mgl64.Scale2D(c.scale, -c.scale)).
		Mul3(mgl64.Translate2D(-c.arenaWidth/2, 0))
	c.toWorld = c.toScreen.Inv()
}

// Scale returns pixels per meter.
func (c Camera) Scale() float64 {
	return c.scale
}

// ToScreen converts a world point to screen pixels.
func (c Camera) ToScreen(p mgl64.Vec2) mgl64.Vec2 {
	return c.toScreen.Mul3x1(p.Vec3(1)).Vec2()
}

// ToWorld converts a screen pixel to a world point.
func (c Camera) ToWorld(p mgl64.Vec2) mgl64.Vec2 {
	return c.toWorld.Mul3x1(p.Vec3(1)).Vec2()
}

// Rect converts a world box given by its centre and size to the screen
// rectangle's top-left corner and size.
func (c Camera) Rect(centre, size mgl64.Vec2) (x, y, w, h float32) {
	topLeft := c.ToScreen(mgl64.Vec2{centre[0] - size[0]/2, centre[1] + size[1]/2})
	return float32(topLeft[0]), float32(topLeft[1]), float32(size[0] * c.scale), float32(size[1] * c.scale)
}
