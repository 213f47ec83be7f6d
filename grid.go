package main

// plotPoint maps sample i of n with value v onto screen coordinates. scale
// is the value drawn at the top plot edge.
func plotPoint(i, n int, v, scale float64) (int, int) {
	x := 0
	if n > 1 {
		x = i * (screenW - 1) / (n - 1)
	}
	half := float64(screenH/2 - plotMargin)
	y := screenH/2 - int(v/scale*half)
	return clampCoord(x, 0, screenW-1), clampCoord(y, 0, screenH-1)
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
