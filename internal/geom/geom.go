// Package geom holds the plane geometry shared by the world model and the
// collision kernel: points, velocity vectors and axis-aligned rectangles.
package geom

import "math"

type Point2D struct {
	X float64
	Y float64
}

type Vec2D struct {
	X float64
	Y float64
}

// Rect2D is a normalized axis-aligned rectangle (Left <= Right, Top <= Bottom;
// the Y axis grows downwards, matching the map coordinate system).
type Rect2D struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (r Rect2D) Contains(p Point2D) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// IsEqual compares two floats with an absolute tolerance.
func IsEqual(x, y, epsilon float64) bool {
	return math.Abs(x-y) <= epsilon
}

func IsZero(x float64) bool {
	return x == 0
}

// IsHorizontalVec reports whether a velocity points along the X axis:
// no vertical component means horizontal motion.
func IsHorizontalVec(v Vec2D) bool {
	return IsZero(v.Y)
}

func IsVerticalVec(v Vec2D) bool {
	return IsZero(v.X)
}

func IsZeroVec(v Vec2D) bool {
	return IsZero(v.X) && IsZero(v.Y)
}

// IsHorizontalRect reports whether a rectangle is wider than tall. Road
// rectangles are never square: the inflation is symmetric, so orientation
// survives it.
func IsHorizontalRect(r Rect2D) bool {
	return (r.Bottom - r.Top) < (r.Right - r.Left)
}

func IsVerticalRect(r Rect2D) bool {
	return (r.Bottom - r.Top) > (r.Right - r.Left)
}
