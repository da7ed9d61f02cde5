// Package viewport holds the on-screen rectangle the scene is rendered into.
package viewport

import "github.com/Faultbox/midgard-scene/pkg/math"

// Rect is a viewport rectangle in window pixels. X, Y is the top-left corner.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() math.Vec2 {
	return math.Vec2{X: r.X, Y: r.Y}
}

// Size returns the width and height as a Vec2.
func (r Rect) Size() math.Vec2 {
	return math.Vec2{X: r.Width, Y: r.Height}
}

// AspectRatio returns width/height, or 1 for a degenerate rectangle.
func (r Rect) AspectRatio() float32 {
	if r.Width <= 0 || r.Height <= 0 {
		return 1
	}
	return r.Width / r.Height
}

// Valid reports whether the rectangle has a positive area.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Provider exposes the current viewport.
type Provider interface {
	Viewport() Rect
}

// State is a mutable viewport owned by the window or editor layer.
type State struct {
	rect Rect
}

// NewState creates a viewport state.
func NewState(rect Rect) *State {
	return &State{rect: rect}
}

// Viewport returns the current rectangle.
func (s *State) Viewport() Rect {
	return s.rect
}

// Set replaces the rectangle.
func (s *State) Set(x, y, width, height float32) {
	s.rect = Rect{X: x, Y: y, Width: width, Height: height}
}

// Resize changes the size and keeps the top-left corner.
func (s *State) Resize(width, height float32) {
	s.rect.Width = width
	s.rect.Height = height
}
