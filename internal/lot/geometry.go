package lot

import "math"

// Point is a pixel coordinate in the camera frame.
type Point struct {
	X float64
	Y float64
}

// Polygon is a closed region described by its vertices in order.
type Polygon []Point

// Box is an axis-aligned detection box (x1,y1 top-left, x2,y2 bottom-right).
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

func (b Box) area() float64 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Centroid returns the vertex average of the polygon.
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, v := range p {
		sx += v.X
		sy += v.Y
	}
	n := float64(len(p))
	return Point{X: sx / n, Y: sy / n}
}

// Contains reports whether pt lies inside the polygon, using ray casting.
func (p Polygon) Contains(pt Point) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	p1 := p[0]
	for i := 1; i <= n; i++ {
		p2 := p[i%n]
		if pt.Y > math.Min(p1.Y, p2.Y) && pt.Y <= math.Max(p1.Y, p2.Y) && pt.X <= math.Max(p1.X, p2.X) {
			var xinters float64
			if p1.Y != p2.Y {
				xinters = (pt.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
			}
			if p1.X == p2.X || pt.X <= xinters {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() Box {
	if len(p) == 0 {
		return Box{}
	}
	b := Box{X1: p[0].X, Y1: p[0].Y, X2: p[0].X, Y2: p[0].Y}
	for _, v := range p[1:] {
		b.X1 = math.Min(b.X1, v.X)
		b.Y1 = math.Min(b.Y1, v.Y)
		b.X2 = math.Max(b.X2, v.X)
		b.Y2 = math.Max(b.Y2, v.Y)
	}
	return b
}

// IoU computes intersection over union between a detection box and the
// polygon's bounding box.
func IoU(det Box, space Polygon) float64 {
	pb := space.Bounds()

	x1 := math.Max(det.X1, pb.X1)
	y1 := math.Max(det.Y1, pb.Y1)
	x2 := math.Min(det.X2, pb.X2)
	y2 := math.Min(det.Y2, pb.Y2)

	if x2 < x1 || y2 < y1 {
		return 0
	}
	intersection := (x2 - x1) * (y2 - y1)

	union := det.area() + pb.area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
