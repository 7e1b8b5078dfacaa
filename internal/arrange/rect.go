package arrange

import "fmt"

// Rect describes a rectangular screen region.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// SplitColumns divides a region into n equal side-by-side columns, left to
// right. Remainder pixels from integer division are left unused on the right
// edge so all columns stay equal.
func SplitColumns(region Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}

	colWidth := region.Width / n

	cols := make([]Rect, n)
	for i := 0; i < n; i++ {
		cols[i] = Rect{
			X:      region.X + i*colWidth,
			Y:      region.Y,
			Width:  colWidth,
			Height: region.Height,
		}
	}
	return cols
}
