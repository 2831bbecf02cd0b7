package render

import "math"

// Cohen-Sutherland outcodes.
const (
	clipInside = 0
	clipLeft   = 1 << iota
	clipRight
	clipBottom
	clipTop
)

func outcode(x, y, xmin, ymin, xmax, ymax float64) int {
	code := clipInside
	if x < xmin {
		code |= clipLeft
	} else if x > xmax {
		code |= clipRight
	}
	if y < ymin {
		code |= clipTop
	} else if y > ymax {
		code |= clipBottom
	}
	return code
}

// clipLine clips the segment to the rectangle [xmin, xmax] x [ymin, ymax].
// ok is false when nothing of the segment is inside.
func clipLine(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	c0 := outcode(x0, y0, xmin, ymin, xmax, ymax)
	c1 := outcode(x1, y1, xmin, ymin, xmax, ymax)

	// Every pass moves one endpoint onto a clip edge.
	for range 8 {
		switch {
		case c0|c1 == 0:
			return x0, y0, x1, y1, finite(x0, y0, x1, y1)
		case c0&c1 != 0:
			return 0, 0, 0, 0, false
		}

		out := c1
		if c0 != 0 {
			out = c0
		}
		var x, y float64
		switch {
		case out&clipTop != 0:
			x = x0 + (x1-x0)*(ymin-y0)/(y1-y0)
			y = ymin
		case out&clipBottom != 0:
			x = x0 + (x1-x0)*(ymax-y0)/(y1-y0)
			y = ymax
		case out&clipRight != 0:
			y = y0 + (y1-y0)*(xmax-x0)/(x1-x0)
			x = xmax
		case out&clipLeft != 0:
			y = y0 + (y1-y0)*(xmin-x0)/(x1-x0)
			x = xmin
		}
		if !finite(x, y) {
			return 0, 0, 0, 0, false
		}

		if out == c0 {
			x0, y0 = x, y
			c0 = outcode(x0, y0, xmin, ymin, xmax, ymax)
		} else {
			x1, y1 = x, y
			c1 = outcode(x1, y1, xmin, ymin, xmax, ymax)
		}
	}
	return 0, 0, 0, 0, false
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
