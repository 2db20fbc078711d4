// Package shapes is the reference solution for the shape hierarchy task.
package shapes

import "math"

// Shape is anything with an area and a perimeter.
type Shape interface {
	Area() float64
	Perimeter() float64
}

type Circle struct {
	Radius float64
}

func (c Circle) Area() float64      { return math.Pi * c.Radius * c.Radius }
func (c Circle) Perimeter() float64 { return 2 * math.Pi * c.Radius }

type Rectangle struct {
	Width, Height float64
}

func (r Rectangle) Area() float64      { return r.Width * r.Height }
func (r Rectangle) Perimeter() float64 { return 2 * (r.Width + r.Height) }

// Square is a Rectangle with equal sides; it reuses Rectangle's methods.
type Square struct {
	Rectangle
}

func NewSquare(side float64) Square {
	return Square{Rectangle{Width: side, Height: side}}
}

func (s Square) Side() float64 { return s.Width }

type Triangle struct {
	A, B, C float64
}

// Area uses Heron's formula.
func (t Triangle) Area() float64 {
	s := t.Perimeter() / 2
	return math.Sqrt(s * (s - t.A) * (s - t.B) * (s - t.C))
}

func (t Triangle) Perimeter() float64 { return t.A + t.B + t.C }

// Valid reports whether the sides satisfy the strict triangle inequality.
func (t Triangle) Valid() bool {
	return t.A+t.B > t.C && t.A+t.C > t.B && t.B+t.C > t.A
}

func TotalArea(shapes []Shape) float64 {
	var total float64
	for _, s := range shapes {
		total += s.Area()
	}
	return total
}
